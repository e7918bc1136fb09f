package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldRequestSeq    = "request_seq"
	FieldMethod        = "method"
	FieldURL           = "url"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldRecordCount   = "record_count"
	FieldCellCount     = "cell_count"
	FieldCaller        = "caller"
	FieldFillerCount   = "filler_count"
	FieldRoute         = "route"
	FieldDate          = "date"
	FieldCellIndex     = "cell_index"
	FieldEventType     = "event_type"
	FieldQueue         = "queue"
	FieldExchange      = "exchange"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentScreen     = "screen"
	ComponentSummary    = "summary"
	ComponentNavigation = "navigation"
	ComponentAMQP       = "amqp"
	ComponentTrace      = "trace"
	ComponentRender     = "render"
)

// Operations defines standard operation names
const (
	OpFetch     = "fetch"
	OpReconcile = "reconcile"
	OpNavigate  = "navigate"
	OpFocus     = "focus"
	OpTap       = "tap"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpRender    = "render"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithRequestSeq adds the loader's request sequence number.
func (f LogFields) WithRequestSeq(seq uint64) LogFields {
	f[FieldRequestSeq] = seq
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithNavigation adds the route and date of a navigation event.
func (f LogFields) WithNavigation(route, date string) LogFields {
	f[FieldRoute] = route
	f[FieldDate] = date
	return f
}

// WithHTTPRequest adds outbound request fields
func (f LogFields) WithHTTPRequest(method, url string) LogFields {
	f[FieldMethod] = method
	f[FieldURL] = url
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	applog "habits/internal/log"
	"habits/internal/summary"
)

// AlertWriter shows alerts as a line on w and logs them.
type AlertWriter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *applog.Logger
}

var _ summary.Notifier = (*AlertWriter)(nil)

func NewAlertWriter(w io.Writer, logger *applog.Logger) *AlertWriter {
	return &AlertWriter{w: w, logger: logger.WithComponent(applog.ComponentScreen)}
}

func (a *AlertWriter) Alert(ctx context.Context, title, message string) {
	a.logger.WarnContext(ctx, "Alert shown", "title", title, "message", message)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.w != nil {
		_, _ = fmt.Fprintf(a.w, "%s %s\n", title, message)
	}
}

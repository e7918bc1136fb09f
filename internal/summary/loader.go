package summary

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"habits/internal/core"
	applog "habits/internal/log"
)

const (
	AlertTitle   = "Oops!"
	AlertMessage = "Could not load habits."
)

var (
	// ErrSummaryFetch is the single failure kind surfaced to the screen.
	ErrSummaryFetch = errors.New("summary fetch failed")
	// ErrSuperseded is returned when a newer load started before this one
	// resolved; its result was discarded.
	ErrSuperseded = errors.New("summary load superseded by a newer request")
)

// Notifier shows a blocking, informational alert to the user.
type Notifier interface {
	Alert(ctx context.Context, title, message string)
}

// Loader owns the loading flag and the last loaded summary. A new Loader is
// loading until its first request resolves.
type Loader struct {
	fetcher  Fetcher
	notifier Notifier
	logger   *applog.Logger

	mu      sync.Mutex
	latest  uint64
	loading bool
	loaded  bool
	records []core.SummaryRecord
}

func NewLoader(fetcher Fetcher, notifier Notifier, logger *applog.Logger) *Loader {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Loader{
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger.WithComponent(applog.ComponentSummary),
		loading:  true,
	}
}

// Load fetches the summary and replaces the stored one wholesale.
//
// Every call takes a new sequence number. Only the most recent call may
// change state, clear the loading flag or raise an alert; older calls that
// resolve later return ErrSuperseded. A failure of the most recent call keeps
// the previous summary, alerts once and returns an error matching
// ErrSummaryFetch. No alert is raised when ctx itself is done, as happens on
// shutdown.
func (l *Loader) Load(ctx context.Context) error {
	seq := l.begin()
	defer l.finish(seq)

	records, err := l.fetcher.FetchSummary(ctx)
	if err != nil {
		if !l.isLatest(seq) {
			l.logger.DebugContext(ctx, "Discarding failed superseded summary load",
				applog.NewFields().WithRequestSeq(seq).WithError(err).ToSlice()...)
			return ErrSuperseded
		}
		l.logger.WarnContext(ctx, "Summary load failed",
			applog.NewFields().WithRequestSeq(seq).WithOperation(applog.OpFetch).WithError(err).ToSlice()...)
		if l.notifier != nil && ctx.Err() == nil {
			l.notifier.Alert(ctx, AlertTitle, AlertMessage)
		}
		return fmt.Errorf("%w: %w", ErrSummaryFetch, err)
	}

	if !l.apply(seq, records) {
		l.logger.DebugContext(ctx, "Discarding superseded summary",
			applog.FieldRequestSeq, seq,
			applog.FieldRecordCount, len(records))
		return ErrSuperseded
	}

	l.logger.InfoContext(ctx, "Summary loaded",
		applog.FieldRequestSeq, seq,
		applog.FieldRecordCount, len(records))
	return nil
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest++
	l.loading = true
	return l.latest
}

func (l *Loader) finish(seq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq == l.latest {
		l.loading = false
	}
}

func (l *Loader) isLatest(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return seq == l.latest
}

func (l *Loader) apply(seq uint64, records []core.SummaryRecord) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.latest {
		return false
	}
	l.records = append([]core.SummaryRecord(nil), records...)
	l.loaded = true
	return true
}

// Summary returns a copy of the last loaded summary. ok is false until a
// load has succeeded.
func (l *Loader) Summary() (records []core.SummaryRecord, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		return nil, false
	}
	return append([]core.SummaryRecord(nil), l.records...), true
}

// Loading reports whether the most recent load is still outstanding.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Seq returns the sequence number of the most recent load.
func (l *Loader) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

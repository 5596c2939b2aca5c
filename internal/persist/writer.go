package persist

import (
	"context"
	"sync"
	"time"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// DefaultDebounce is the delay between the last edit and the write
const DefaultDebounce = 300 * time.Millisecond

// Source produces the record to write. Implementations take whatever lock
// guards the document while encoding; the write itself runs unlocked.
type Source interface {
	PlotRecord() (*repository.PlotRecord, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func() (*repository.PlotRecord, error)

// PlotRecord calls f
func (f SourceFunc) PlotRecord() (*repository.PlotRecord, error) {
	return f()
}

// SaveNotifier is told about the outcome of background writes
type SaveNotifier interface {
	PlotSaved(plotID string)
	SaveFailed(plotID string, err error)
}

// Writer coalesces bursts of edits into one write after a quiet period
type Writer struct {
	plotID string
	store  *Store
	src    Source
	notify SaveNotifier
	log    logger.Logger
	delay  time.Duration

	mu     sync.Mutex // guards timer, dirty, closed
	timer  *time.Timer
	dirty  bool
	closed bool

	writeMu sync.Mutex // serializes writes
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithDelay sets the debounce delay
func WithDelay(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithNotifier reports background write results
func WithNotifier(n SaveNotifier) WriterOption {
	return func(w *Writer) {
		w.notify = n
	}
}

// NewWriter creates a Writer for one plot
func NewWriter(plotID string, store *Store, src Source, log logger.Logger, opts ...WriterOption) *Writer {
	w := &Writer{
		plotID: plotID,
		store:  store,
		src:    src,
		log:    log,
		delay:  DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Schedule marks the document dirty and restarts the debounce timer. It
// does nothing after Discard.
func (w *Writer) Schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.dirty = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

// Pending reports whether there are unwritten changes
func (w *Writer) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

func (w *Writer) fire() {
	if err := w.writeIfDirty(context.Background()); err != nil {
		w.log.Error("Background plot save failed", "plot_id", w.plotID, "error", err)
		if w.notify != nil {
			w.notify.SaveFailed(w.plotID, err)
		}
	}
}

// Flush cancels the timer and writes pending changes now. It waits for a
// write already in flight.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	return w.writeIfDirty(ctx)
}

// Discard cancels the timer, drops pending changes and closes the writer.
// It returns once any write in flight has finished, so the row can be
// deleted without a late write bringing it back.
func (w *Writer) Discard() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.dirty = false
	w.closed = true
	w.mu.Unlock()

	w.writeMu.Lock()
	w.writeMu.Unlock()
}

func (w *Writer) writeIfDirty(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return nil
	}
	w.dirty = false
	w.mu.Unlock()

	rec, err := w.src.PlotRecord()
	if err == nil {
		err = w.store.Write(ctx, rec)
	}
	if err != nil {
		w.mu.Lock()
		w.dirty = !w.closed
		w.mu.Unlock()
		return err
	}
	if w.notify != nil {
		w.notify.PlotSaved(w.plotID)
	}
	return nil
}

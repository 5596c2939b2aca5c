package services

import (
	"context"
	"sync"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/persist"
	"github.com/abrezinsky/stageplot/internal/plot"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// Session owns one open document. Its mutex serializes API goroutines and
// the debounce timer; the document itself has no locking.
type Session struct {
	mu     sync.Mutex
	doc    *plot.Document
	writer *persist.Writer
}

func newSession(doc *plot.Document, store *persist.Store, log logger.Logger, opts ...persist.WriterOption) *Session {
	s := &Session{doc: doc}
	s.writer = persist.NewWriter(doc.ID(), store, persist.SourceFunc(s.record), log, opts...)
	doc.SetOnChange(s.writer.Schedule)
	return s
}

// record encodes the document for the writer under the session lock
func (s *Session) record() (*repository.PlotRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persist.Encode(s.doc)
}

// ID returns the plot id
func (s *Session) ID() string {
	return s.doc.ID()
}

// Edit runs fn with exclusive access to the document. Mutations schedule
// a debounced write.
func (s *Session) Edit(fn func(d *plot.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// View runs fn with exclusive access; fn must not mutate the document
func (s *Session) View(fn func(d *plot.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// State returns a deep copy of the document state
func (s *Session) State() plot.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.State()
}

// Pending reports unwritten edits
func (s *Session) Pending() bool {
	return s.writer.Pending()
}

// Flush writes pending edits now. Must not be called from inside Edit.
func (s *Session) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

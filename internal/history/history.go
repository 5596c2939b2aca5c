// Package history keeps the bounded undo/redo log of a plot document.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abrezinsky/stageplot/internal/models"
)

// MaxEntries caps the undo log
const MaxEntries = 50

// Entry is one undo log record. Timestamp is unix milliseconds.
type Entry struct {
	Snapshot  models.Snapshot `json:"snapshot"`
	Timestamp int64           `json:"timestamp"`
}

// Clone returns a deep copy of the entry
func (e Entry) Clone() Entry {
	return Entry{Snapshot: e.Snapshot.Clone(), Timestamp: e.Timestamp}
}

// History is an undo log with a pointer at the entry matching the live
// document, plus a redo stack. It is not safe for concurrent use.
type History struct {
	log       []Entry
	redo      []models.Snapshot
	pointer   int
	recording bool
	now       func() time.Time
}

// Option configures a History
type Option func(*History)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// New creates an idle history. Nothing is recorded until StartRecording
// or Restore.
func New(opts ...Option) *History {
	h := &History{pointer: -1, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StartRecording resumes from a persisted undo log and redo stack. Either
// may be empty. When the saved log holds entries from before the channel
// model (the snapshot is a bare item array) the saved history is dropped
// and the log is reseeded from current. Returns true when saved history
// was discarded.
func (h *History) StartRecording(savedLog, savedRedo json.RawMessage, current models.Snapshot) (bool, error) {
	log, legacyLog, err := decodeLog(savedLog)
	if err != nil {
		return false, err
	}
	redo, legacyRedo, err := decodeRedo(savedRedo)
	if err != nil {
		return false, err
	}
	if legacyLog || legacyRedo {
		h.Reset(current)
		return true, nil
	}
	h.Restore(log, redo, current)
	return false, nil
}

// Restore resumes from typed history. An empty log is seeded from current;
// otherwise the pointer is placed on the last entry.
func (h *History) Restore(log []Entry, redo []models.Snapshot, current models.Snapshot) {
	if len(log) == 0 {
		h.Reset(current)
		return
	}
	if len(log) > MaxEntries {
		log = log[len(log)-MaxEntries:]
	}
	h.log = make([]Entry, len(log))
	for i := range log {
		h.log[i] = log[i].Clone()
	}
	h.redo = make([]models.Snapshot, len(redo))
	for i := range redo {
		h.redo[i] = redo[i].Clone()
	}
	h.pointer = len(h.log) - 1
	h.recording = true
}

// Reset discards all history and seeds the log with current
func (h *History) Reset(current models.Snapshot) {
	h.log = []Entry{{Snapshot: current.Clone(), Timestamp: h.stamp()}}
	h.redo = nil
	h.pointer = 0
	h.recording = true
}

// Record appends the state after an edit. Forward entries past the
// pointer are dropped, the log is capped at MaxEntries and redo is cleared.
func (h *History) Record(s models.Snapshot) {
	if !h.recording {
		return
	}
	h.log = append(h.log[:h.pointer+1], Entry{Snapshot: s.Clone(), Timestamp: h.stamp()})
	if len(h.log) > MaxEntries {
		h.log = append([]Entry(nil), h.log[len(h.log)-MaxEntries:]...)
	}
	h.pointer = len(h.log) - 1
	h.redo = nil
}

// Undo pushes current onto the redo stack and returns a copy of the
// previous entry
func (h *History) Undo(current models.Snapshot) (models.Snapshot, bool) {
	if !h.CanUndo() {
		return models.Snapshot{}, false
	}
	h.redo = append(h.redo, current.Clone())
	h.pointer--
	return h.log[h.pointer].Snapshot.Clone(), true
}

// Redo pops the redo stack and returns a copy of it. When the pointer
// moves past the end of the log the popped state is appended to the log.
func (h *History) Redo() (models.Snapshot, bool) {
	if !h.CanRedo() {
		return models.Snapshot{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.pointer++
	if h.pointer >= len(h.log) {
		h.log = append(h.log, Entry{Snapshot: s.Clone(), Timestamp: h.stamp()})
		h.pointer = len(h.log) - 1
	}
	return s.Clone(), true
}

func (h *History) CanUndo() bool {
	return h.recording && h.pointer > 0
}

func (h *History) CanRedo() bool {
	return h.recording && len(h.redo) > 0
}

// Len is the number of log entries
func (h *History) Len() int {
	return len(h.log)
}

// Pointer is the index of the entry matching the live document
func (h *History) Pointer() int {
	return h.pointer
}

// Recording reports whether edits are being recorded
func (h *History) Recording() bool {
	return h.recording
}

// Entries returns a deep copy of the log for persistence
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.log))
	for i := range h.log {
		out[i] = h.log[i].Clone()
	}
	return out
}

// RedoStack returns a deep copy of the redo stack, bottom first
func (h *History) RedoStack() []models.Snapshot {
	out := make([]models.Snapshot, len(h.redo))
	for i := range h.redo {
		out[i] = h.redo[i].Clone()
	}
	return out
}

func (h *History) stamp() int64 {
	return h.now().UnixMilli()
}

// IsLegacyLog reports whether a persisted undo log predates the channel
// model
func IsLegacyLog(raw json.RawMessage) bool {
	_, legacy, err := decodeLog(raw)
	return err == nil && legacy
}

func decodeLog(raw json.RawMessage) ([]Entry, bool, error) {
	if isEmpty(raw) {
		return nil, false, nil
	}
	var rawEntries []struct {
		Snapshot  json.RawMessage `json:"snapshot"`
		Timestamp int64           `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &rawEntries); err != nil {
		return nil, false, fmt.Errorf("failed to parse undo log: %w", err)
	}
	entries := make([]Entry, 0, len(rawEntries))
	for _, re := range rawEntries {
		if isArray(re.Snapshot) {
			return nil, true, nil
		}
		var s models.Snapshot
		if !isEmpty(re.Snapshot) {
			if err := json.Unmarshal(re.Snapshot, &s); err != nil {
				return nil, false, fmt.Errorf("failed to parse undo entry: %w", err)
			}
		}
		s.Version = models.SnapshotVersion
		entries = append(entries, Entry{Snapshot: s, Timestamp: re.Timestamp})
	}
	return entries, false, nil
}

func decodeRedo(raw json.RawMessage) ([]models.Snapshot, bool, error) {
	if isEmpty(raw) {
		return nil, false, nil
	}
	var rawStack []json.RawMessage
	if err := json.Unmarshal(raw, &rawStack); err != nil {
		return nil, false, fmt.Errorf("failed to parse redo stack: %w", err)
	}
	stack := make([]models.Snapshot, 0, len(rawStack))
	for _, r := range rawStack {
		if isArray(r) {
			return nil, true, nil
		}
		var s models.Snapshot
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, false, fmt.Errorf("failed to parse redo entry: %w", err)
		}
		s.Version = models.SnapshotVersion
		stack = append(stack, s)
	}
	return stack, false, nil
}

func isEmpty(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

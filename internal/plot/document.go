// Package plot is the in-memory stage plot document and its edit operations.
//
// A Document is not safe for concurrent use; callers serialize access
// (see services.Session). Every mutating method calls the change hook so
// the owner can schedule a write.
package plot

import (
	"encoding/json"
	"math"
	"time"

	"github.com/abrezinsky/stageplot/internal/channels"
	"github.com/abrezinsky/stageplot/internal/history"
	"github.com/abrezinsky/stageplot/internal/models"
)

// Defaults for new documents
const (
	DefaultName           = "Untitled Plot"
	DefaultStageWidth     = 24.0
	DefaultStageDepth     = 16.0
	DefaultCanvasWidth    = 1100.0
	DefaultInputChannels  = 48
	DefaultOutputChannels = 16
)

// State is a plain value copy of everything persisted for a plot
type State struct {
	ID                    string
	BandID                string
	Name                  string
	RevisionDate          string
	StageWidth            float64
	StageDepth            float64
	CanvasWidth           float64
	ConsoleType           string
	CategoryColorDefaults map[string]string
	StereoLinks           []int
	OutputStereoLinks     []int
	PersonIDs             []int
	IsTemplate            bool
	SourcePlotID          string
	Items                 []models.Item
	Outputs               []models.Output
	InputChannels         []models.InputChannel
	OutputChannels        []models.OutputChannel
}

// Document is a live, editable stage plot
type Document struct {
	id           string
	bandID       string
	name         string
	revisionDate string
	stageWidth   float64
	stageDepth   float64
	canvasWidth  float64
	consoleType  string
	colorDefault map[string]string
	stereoLinks  []int
	outStereo    []int
	personIDs    []int
	isTemplate   bool
	sourcePlotID string

	items   []models.Item
	outputs []models.Output
	inputs  *channels.InputPatch
	outs    *channels.OutputPatch
	history *history.History

	onChange func()
}

// Option configures a new Document
type Option func(*Document)

// WithHistory supplies the history instance, e.g. one with a fixed clock
func WithHistory(h *history.History) Option {
	return func(d *Document) {
		d.history = h
	}
}

// New creates an empty document with default stage and channel counts.
// History recording starts immediately.
func New(id, bandID string, opts ...Option) *Document {
	d := &Document{
		id:           id,
		bandID:       bandID,
		name:         DefaultName,
		revisionDate: time.Now().Format("2006-01-02"),
		stageWidth:   DefaultStageWidth,
		stageDepth:   DefaultStageDepth,
		canvasWidth:  DefaultCanvasWidth,
		colorDefault: map[string]string{},
		stereoLinks:  []int{},
		outStereo:    []int{},
		personIDs:    []int{},
		items:        []models.Item{},
		outputs:      []models.Output{},
		inputs:       channels.NewInputPatch(DefaultInputChannels),
		outs:         channels.NewOutputPatch(DefaultOutputChannels),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = history.New()
	}
	d.history.Reset(d.Snapshot())
	return d
}

// FromState builds a document from persisted state, taking ownership of
// its slices and maps. History is idle until StartHistory is called.
func FromState(s State, opts ...Option) *Document {
	d := &Document{
		id:           s.ID,
		bandID:       s.BandID,
		name:         s.Name,
		revisionDate: s.RevisionDate,
		stageWidth:   s.StageWidth,
		stageDepth:   s.StageDepth,
		canvasWidth:  s.CanvasWidth,
		consoleType:  s.ConsoleType,
		colorDefault: s.CategoryColorDefaults,
		personIDs:    s.PersonIDs,
		isTemplate:   s.IsTemplate,
		sourcePlotID: s.SourcePlotID,
		items:        s.Items,
		outputs:      s.Outputs,
		inputs:       channels.NewInputPatchFrom(s.InputChannels),
		outs:         channels.NewOutputPatchFrom(s.OutputChannels),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = history.New()
	}
	if d.name == "" {
		d.name = DefaultName
	}
	if d.stageWidth <= 0 {
		d.stageWidth = DefaultStageWidth
	}
	if d.stageDepth <= 0 {
		d.stageDepth = DefaultStageDepth
	}
	if d.canvasWidth <= 0 {
		d.canvasWidth = DefaultCanvasWidth
	}
	if d.colorDefault == nil {
		d.colorDefault = map[string]string{}
	}
	if d.personIDs == nil {
		d.personIDs = []int{}
	}
	if d.items == nil {
		d.items = []models.Item{}
	}
	if d.outputs == nil {
		d.outputs = []models.Output{}
	}
	if d.inputs.Len() == 0 {
		d.inputs.Resize(DefaultInputChannels)
	}
	if d.outs.Len() == 0 {
		d.outs.Resize(DefaultOutputChannels)
	}
	d.stereoLinks = channels.EvictStereoLinks(s.StereoLinks, d.inputs.Len())
	d.outStereo = channels.EvictStereoLinks(s.OutputStereoLinks, d.outs.Len())
	return d
}

// StartHistory resumes the persisted undo log and redo stack. Returns true
// when legacy history was discarded.
func (d *Document) StartHistory(savedLog, savedRedo json.RawMessage) (bool, error) {
	return d.history.StartRecording(savedLog, savedRedo, d.Snapshot())
}

// ResetHistory drops the undo log and reseeds it from the current state
func (d *Document) ResetHistory() {
	d.history.Reset(d.Snapshot())
}

// History exposes the undo log for persistence
func (d *Document) History() *history.History {
	return d.history
}

// SetOnChange installs the hook called after every mutation
func (d *Document) SetOnChange(fn func()) {
	d.onChange = fn
}

func (d *Document) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}

// commit records an undo entry and then signals the change
func (d *Document) commit() {
	d.history.Record(d.Snapshot())
	d.changed()
}

// Snapshot is a deep copy of the undoable state
func (d *Document) Snapshot() models.Snapshot {
	return models.Snapshot{
		Version:        models.SnapshotVersion,
		Items:          models.CloneItems(d.items),
		InputChannels:  d.inputs.Snapshot(),
		OutputChannels: d.outs.Snapshot(),
		Outputs:        models.CloneOutputs(d.outputs),
	}
}

// State is a deep copy of everything persisted
func (d *Document) State() State {
	return State{
		ID:                    d.id,
		BandID:                d.bandID,
		Name:                  d.name,
		RevisionDate:          d.revisionDate,
		StageWidth:            d.stageWidth,
		StageDepth:            d.stageDepth,
		CanvasWidth:           d.canvasWidth,
		ConsoleType:           d.consoleType,
		CategoryColorDefaults: copyStringMap(d.colorDefault),
		StereoLinks:           append([]int{}, d.stereoLinks...),
		OutputStereoLinks:     append([]int{}, d.outStereo...),
		PersonIDs:             append([]int{}, d.personIDs...),
		IsTemplate:            d.isTemplate,
		SourcePlotID:          d.sourcePlotID,
		Items:                 models.CloneItems(d.items),
		Outputs:               models.CloneOutputs(d.outputs),
		InputChannels:         d.inputs.Snapshot(),
		OutputChannels:        d.outs.Snapshot(),
	}
}

// apply replaces the undoable state with s, which must already be a copy
func (d *Document) apply(s models.Snapshot) {
	d.items = s.Items
	if d.items == nil {
		d.items = []models.Item{}
	}
	d.outputs = s.Outputs
	if d.outputs == nil {
		d.outputs = []models.Output{}
	}
	d.inputs.Replace(s.InputChannels)
	d.outs.Replace(s.OutputChannels)
	d.stereoLinks = channels.EvictStereoLinks(d.stereoLinks, d.inputs.Len())
	d.outStereo = channels.EvictStereoLinks(d.outStereo, d.outs.Len())
}

// Undo steps back one entry
func (d *Document) Undo() bool {
	s, ok := d.history.Undo(d.Snapshot())
	if !ok {
		return false
	}
	d.apply(s)
	d.changed()
	return true
}

// Redo re-applies the last undone entry
func (d *Document) Redo() bool {
	s, ok := d.history.Redo()
	if !ok {
		return false
	}
	d.apply(s)
	d.changed()
	return true
}

func (d *Document) CanUndo() bool { return d.history.CanUndo() }
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

func (d *Document) ID() string           { return d.id }
func (d *Document) BandID() string       { return d.bandID }
func (d *Document) Name() string         { return d.name }
func (d *Document) RevisionDate() string { return d.revisionDate }
func (d *Document) StageWidth() float64  { return d.stageWidth }
func (d *Document) StageDepth() float64  { return d.stageDepth }
func (d *Document) CanvasWidth() float64 { return d.canvasWidth }
func (d *Document) ConsoleType() string  { return d.consoleType }
func (d *Document) IsTemplate() bool     { return d.isTemplate }
func (d *Document) SourcePlotID() string { return d.sourcePlotID }

// InputChannelMode is the number of input channels
func (d *Document) InputChannelMode() int { return d.inputs.Len() }

// OutputChannelMode is the number of output channels
func (d *Document) OutputChannelMode() int { return d.outs.Len() }

// SetName renames the plot
func (d *Document) SetName(name string) {
	if name == "" {
		name = DefaultName
	}
	d.name = name
	d.changed()
}

// SetRevisionDate sets the YYYY-MM-DD revision date
func (d *Document) SetRevisionDate(date string) {
	d.revisionDate = date
	d.changed()
}

// SetCanvasWidth sets the editor canvas width in pixels; non-positive
// widths fall back to DefaultCanvasWidth
func (d *Document) SetCanvasWidth(w float64) {
	if w <= 0 {
		w = DefaultCanvasWidth
	}
	d.canvasWidth = w
	d.changed()
}

// PersonIDs returns the plot membership set
func (d *Document) PersonIDs() []int {
	return append([]int{}, d.personIDs...)
}

// AddPerson adds a person to the plot membership
func (d *Document) AddPerson(personID int) bool {
	for _, id := range d.personIDs {
		if id == personID {
			return false
		}
	}
	d.personIDs = append(d.personIDs, personID)
	d.changed()
	return true
}

// RemovePerson drops a person from the plot membership. Items keep their
// person_id.
func (d *Document) RemovePerson(personID int) bool {
	for i, id := range d.personIDs {
		if id == personID {
			d.personIDs = append(d.personIDs[:i], d.personIDs[i+1:]...)
			d.changed()
			return true
		}
	}
	return false
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// round4 rounds to 4 decimal places
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

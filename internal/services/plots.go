package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/migrate"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/persist"
	"github.com/abrezinsky/stageplot/internal/plot"
	"github.com/abrezinsky/stageplot/internal/repository"
	"github.com/abrezinsky/stageplot/internal/scene"
)

// Broadcaster defines the interface for broadcasting plot events to clients
type Broadcaster interface {
	BroadcastPlotSaved(plotID string)
	BroadcastSaveFailed(plotID string, err error)
	BroadcastPlotChanged(plotID string)
}

// Defaults are applied to newly created plots
type Defaults struct {
	ConsoleType    string
	InputChannels  int
	OutputChannels int
	StageWidth     float64
	StageDepth     float64
	CanvasWidth    float64
}

// PlotView is a read-only view of an open plot
type PlotView struct {
	plot.State
	CanUndo bool
	CanRedo bool
	Pending bool
}

// PlotService manages open plot sessions and plot lifecycle
type PlotService struct {
	log      logger.Logger
	repo     repository.FullRepository
	store    *persist.Store
	delay    time.Duration
	defaults Defaults
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*Session

	bmu         sync.RWMutex
	broadcaster Broadcaster
}

// PlotOption configures a PlotService
type PlotOption func(*PlotService)

// WithWriteDelay sets the debounce delay for background saves
func WithWriteDelay(d time.Duration) PlotOption {
	return func(s *PlotService) {
		s.delay = d
	}
}

// WithDefaults sets the defaults for new plots
func WithDefaults(d Defaults) PlotOption {
	return func(s *PlotService) {
		s.defaults = d
	}
}

// WithIDGenerator replaces the plot id generator (for testing)
func WithIDGenerator(fn func() string) PlotOption {
	return func(s *PlotService) {
		s.newID = fn
	}
}

// NewPlotService creates a new PlotService
func NewPlotService(log logger.Logger, repo repository.FullRepository, opts ...PlotOption) *PlotService {
	s := &PlotService{
		log:      log,
		repo:     repo,
		store:    persist.NewStore(repo, log),
		delay:    persist.DefaultDebounce,
		newID:    NewPlotID,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPlotID returns a 32 character hex id
func NewPlotID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *PlotService) SetBroadcaster(b Broadcaster) {
	s.bmu.Lock()
	defer s.bmu.Unlock()
	s.broadcaster = b
}

func (s *PlotService) getBroadcaster() Broadcaster {
	s.bmu.RLock()
	defer s.bmu.RUnlock()
	return s.broadcaster
}

// PlotSaved implements persist.SaveNotifier
func (s *PlotService) PlotSaved(plotID string) {
	if b := s.getBroadcaster(); b != nil {
		b.BroadcastPlotSaved(plotID)
	}
}

// SaveFailed implements persist.SaveNotifier
func (s *PlotService) SaveFailed(plotID string, err error) {
	if b := s.getBroadcaster(); b != nil {
		b.BroadcastSaveFailed(plotID, err)
	}
}

// Open returns the session for a plot, loading and upgrading it on first use
func (s *PlotService) Open(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	doc, res, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Changed() {
		s.log.Info("Upgraded plot on open", "plot_id", id, "coords", res.CoordsMigrated, "channels", res.ChannelsMigrated)
	}
	return s.adopt(doc), nil
}

// adopt wraps a document in a session. Caller holds s.mu.
func (s *PlotService) adopt(doc *plot.Document) *Session {
	sess := newSession(doc, s.store, s.log, persist.WithDelay(s.delay), persist.WithNotifier(s))
	s.sessions[doc.ID()] = sess
	return sess
}

// Edit applies fn to an open plot and notifies clients on success
func (s *PlotService) Edit(ctx context.Context, id string, fn func(d *plot.Document) error) error {
	sess, err := s.Open(ctx, id)
	if err != nil {
		return err
	}
	if err := sess.Edit(fn); err != nil {
		return err
	}
	if b := s.getBroadcaster(); b != nil {
		b.BroadcastPlotChanged(id)
	}
	return nil
}

// Get returns a view of a plot
func (s *PlotService) Get(ctx context.Context, id string) (*PlotView, error) {
	sess, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	var view PlotView
	sess.View(func(d *plot.Document) {
		view = PlotView{State: d.State(), CanUndo: d.CanUndo(), CanRedo: d.CanRedo()}
	})
	view.Pending = sess.Pending()
	return &view, nil
}

// Create makes a new empty plot in a band
func (s *PlotService) Create(ctx context.Context, bandID, name string) (string, error) {
	if bandID == "" {
		return "", ErrBandRequired
	}
	if _, err := s.repo.GetBand(ctx, bandID); err != nil {
		return "", err
	}

	doc := plot.New(s.newID(), bandID)
	doc.SetName(name)
	if err := s.applyDefaults(doc); err != nil {
		return "", err
	}
	doc.ResetHistory()
	return doc.ID(), s.saveNew(ctx, doc)
}

func (s *PlotService) applyDefaults(doc *plot.Document) error {
	d := s.defaults
	if d.CanvasWidth > 0 {
		doc.SetCanvasWidth(d.CanvasWidth)
	}
	if d.StageWidth > 0 && d.StageDepth > 0 {
		if err := doc.SetStage(d.StageWidth, d.StageDepth); err != nil {
			return err
		}
	}
	if d.ConsoleType != "" {
		if err := doc.SetConsoleType(d.ConsoleType); err != nil {
			return err
		}
	}
	if d.InputChannels > 0 && d.InputChannels < doc.InputChannelMode() {
		if err := doc.SetInputChannelMode(d.InputChannels); err != nil {
			return err
		}
	}
	if d.OutputChannels > 0 && d.OutputChannels < doc.OutputChannelMode() {
		if err := doc.SetOutputChannelMode(d.OutputChannels); err != nil {
			return err
		}
	}
	return nil
}

// saveNew writes a new document and opens a session on it
func (s *PlotService) saveNew(ctx context.Context, doc *plot.Document) error {
	if err := s.store.Save(ctx, doc); err != nil {
		return err
	}
	s.mu.Lock()
	s.adopt(doc)
	s.mu.Unlock()
	s.log.Info("Plot created", "plot_id", doc.ID(), "band_id", doc.BandID())
	return nil
}

// List returns the plots of a band, or all plots for an empty band id
func (s *PlotService) List(ctx context.Context, bandID string) ([]models.PlotSummary, error) {
	return s.repo.ListPlots(ctx, bandID, false)
}

// ListTemplates returns the templates of a band
func (s *PlotService) ListTemplates(ctx context.Context, bandID string) ([]models.PlotSummary, error) {
	return s.repo.ListPlots(ctx, bandID, true)
}

// Delete removes a plot and drops its session without writing
func (s *PlotService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.writer.Discard()
	}
	return s.repo.DeletePlot(ctx, id)
}

// Duplicate copies a plot, history excluded, under a new id
func (s *PlotService) Duplicate(ctx context.Context, id, name string) (string, error) {
	return s.copyPlot(ctx, id, "", name, false)
}

// SaveAsTemplate copies a plot into a template
func (s *PlotService) SaveAsTemplate(ctx context.Context, id, name string) (string, error) {
	return s.copyPlot(ctx, id, "", name, true)
}

// CreateFromTemplate starts a new plot from a template, optionally in
// another band
func (s *PlotService) CreateFromTemplate(ctx context.Context, templateID, bandID, name string) (string, error) {
	sess, err := s.Open(ctx, templateID)
	if err != nil {
		return "", err
	}
	if !sess.State().IsTemplate {
		return "", ErrNotATemplate
	}
	if bandID != "" {
		if _, err := s.repo.GetBand(ctx, bandID); err != nil {
			return "", err
		}
	}
	return s.copyPlot(ctx, templateID, bandID, name, false)
}

func (s *PlotService) copyPlot(ctx context.Context, srcID, bandID, name string, template bool) (string, error) {
	sess, err := s.Open(ctx, srcID)
	if err != nil {
		return "", err
	}
	st := sess.State()
	st.ID = s.newID()
	st.SourcePlotID = srcID
	st.IsTemplate = template
	st.RevisionDate = time.Now().Format("2006-01-02")
	if bandID != "" && bandID != st.BandID {
		st.BandID = bandID
		st.PersonIDs = nil
		for i := range st.Items {
			st.Items[i].PersonID = nil
		}
	}
	if name != "" {
		st.Name = name
	}

	doc := plot.FromState(st)
	doc.ResetHistory()
	return doc.ID(), s.saveNew(ctx, doc)
}

// Undo steps a plot back one edit
func (s *PlotService) Undo(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.Edit(ctx, id, func(d *plot.Document) error {
		ok = d.Undo()
		return nil
	})
	return ok, err
}

// Redo re-applies an undone edit
func (s *PlotService) Redo(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.Edit(ctx, id, func(d *plot.Document) error {
		ok = d.Redo()
		return nil
	})
	return ok, err
}

// Flush writes pending edits of one plot now
func (s *PlotService) Flush(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Flush(ctx)
}

// FlushAll writes every open plot. Returns the first error.
func (s *PlotService) FlushAll(ctx context.Context) error {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	var first error
	for _, sess := range open {
		if err := sess.Flush(ctx); err != nil {
			s.log.Error("Failed to flush plot", "plot_id", sess.ID(), "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// CloseAll flushes and forgets every session
func (s *PlotService) CloseAll(ctx context.Context) error {
	err := s.FlushAll(ctx)
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	return err
}

// Upgrade loads a plot through the migration pipeline, writing it back
// when anything changed
func (s *PlotService) Upgrade(ctx context.Context, id string) (migrate.Result, error) {
	_, res, err := s.store.Load(ctx, id)
	return res, err
}

// Channels returns the input patch list of a plot
func (s *PlotService) Channels(ctx context.Context, id string) ([]models.InputChannel, error) {
	sess, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	var chs []models.InputChannel
	sess.View(func(d *plot.Document) {
		chs = d.InputChannels()
	})
	return chs, nil
}

// SceneFile is an exported console scene
type SceneFile struct {
	Filename string
	Content  string
}

// ExportScene renders an X32 scene from the plot's input patch
func (s *PlotService) ExportScene(ctx context.Context, id string) (*SceneFile, error) {
	sess, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	var opts scene.Options
	var name string
	sess.View(func(d *plot.Document) {
		max := d.InputChannelMode()
		if max > scene.X32Channels {
			max = scene.X32Channels
		}
		name = d.Name()
		opts = scene.Options{
			Name:        name,
			Channels:    scene.ChannelsFromPatch(d.InputChannels()[:max]),
			StereoLinks: d.StereoLinks(),
			MaxChannels: max,
		}
	})
	return &SceneFile{Filename: sceneFilename(name), Content: scene.X32(opts)}, nil
}

func sceneFilename(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '/' || r == '\\' || r == ':' || r == '"' || r < 32:
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "scene"
	}
	return clean + ".scn"
}

// importDocument saves a document built elsewhere, e.g. from a share link
func (s *PlotService) importDocument(ctx context.Context, doc *plot.Document) error {
	if doc.ID() == "" {
		return apperrors.Validation("plot id is required")
	}
	if doc.RevisionDate() == "" {
		doc.SetRevisionDate(time.Now().Format("2006-01-02"))
	}
	return s.saveNew(ctx, doc)
}

// Package persist maps plot documents to stored rows and back, running the
// migration pipeline on load, and debounces writes from the editor.
package persist

import (
	"context"
	"encoding/json"
	"math"

	"github.com/abrezinsky/stageplot/internal/channels"
	"github.com/abrezinsky/stageplot/internal/consoles"
	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/migrate"
	"github.com/abrezinsky/stageplot/internal/plot"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// Store loads and saves documents through a PlotRepository
type Store struct {
	repo    repository.PlotRepository
	log     logger.Logger
	docOpts []plot.Option
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithDocumentOptions passes options to every loaded document
func WithDocumentOptions(opts ...plot.Option) StoreOption {
	return func(s *Store) {
		s.docOpts = append(s.docOpts, opts...)
	}
}

// NewStore creates a Store
func NewStore(repo repository.PlotRepository, log logger.Logger, opts ...StoreOption) *Store {
	s := &Store{repo: repo, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads a plot, upgrades it and resumes its history. When a migration
// changed anything the upgraded document is written back at once.
func (s *Store) Load(ctx context.Context, id string) (*plot.Document, migrate.Result, error) {
	rec, err := s.repo.GetPlot(ctx, id)
	if err != nil {
		return nil, migrate.Result{}, err
	}

	doc, meta, res, err := Decode(rec, s.docOpts...)
	if err != nil {
		return nil, migrate.Result{}, err
	}

	if res.CoordsMigrated || res.ChannelsMigrated {
		doc.ResetHistory()
		s.log.Info("Plot migrated", "plot_id", id, "coords", res.CoordsMigrated, "channels", res.ChannelsMigrated)
	} else {
		discarded, err := doc.StartHistory(meta.UndoLog, meta.RedoStack)
		if err != nil {
			s.log.Warn("Discarding unreadable undo history", "plot_id", id, "error", err)
			doc.ResetHistory()
		} else if discarded {
			s.log.Info("Discarded legacy undo history", "plot_id", id)
		}
	}

	if res.Changed() {
		if err := s.Save(ctx, doc); err != nil {
			s.log.Error("Failed to persist migrated plot", "plot_id", id, "error", err)
		}
	}
	return doc, res, nil
}

// Save writes a document synchronously
func (s *Store) Save(ctx context.Context, doc *plot.Document) error {
	rec, err := Encode(doc)
	if err != nil {
		return err
	}
	return s.Write(ctx, rec)
}

// Write stores an already encoded record
func (s *Store) Write(ctx context.Context, rec *repository.PlotRecord) error {
	if err := s.repo.SavePlot(ctx, rec); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal, "failed to save plot "+rec.ID)
	}
	s.log.Debug("Plot saved", "plot_id", rec.ID)
	return nil
}

// Decode builds a document from a stored row. The returned metadata still
// carries the saved undo log and redo stack; history is left idle.
func Decode(rec *repository.PlotRecord, opts ...plot.Option) (*plot.Document, *migrate.Metadata, migrate.Result, error) {
	meta := &migrate.Metadata{}
	if rec.Metadata != "" {
		if err := json.Unmarshal([]byte(rec.Metadata), meta); err != nil {
			return nil, nil, migrate.Result{}, apperrors.Wrap(err, apperrors.ErrInternal, "corrupt plot metadata")
		}
	}

	var channelColors map[string]string
	if err := unmarshalColumn(rec.ChannelColors, &channelColors); err != nil {
		return nil, nil, migrate.Result{}, err
	}
	res := migrate.Run(meta, migrate.Geometry{
		CanvasWidth: rec.CanvasWidth,
		StageWidth:  rec.StageWidth,
		StageDepth:  rec.StageDepth,
	}, channelColors)

	state := plot.State{
		ID:             rec.ID,
		BandID:         rec.BandID,
		Name:           rec.Name,
		RevisionDate:   rec.RevisionDate,
		StageWidth:     rec.StageWidth,
		StageDepth:     rec.StageDepth,
		CanvasWidth:    rec.CanvasWidth,
		ConsoleType:    rec.ConsoleType,
		PersonIDs:      append([]int{}, rec.PersonIDs...),
		IsTemplate:     rec.IsTemplate,
		SourcePlotID:   rec.SourcePlotID,
		Items:          meta.ModelItems(),
		Outputs:        meta.ModelOutputs(),
		InputChannels:  meta.ModelInputChannels(),
		OutputChannels: meta.OutputChannels,
	}
	if err := unmarshalColumn(rec.CategoryColorDefaults, &state.CategoryColorDefaults); err != nil {
		return nil, nil, migrate.Result{}, err
	}
	if err := unmarshalColumn(rec.StereoLinks, &state.StereoLinks); err != nil {
		return nil, nil, migrate.Result{}, err
	}
	state.OutputStereoLinks = meta.OutputStereoLinks
	if rec.OutputStereoLinks != "" {
		if err := unmarshalColumn(rec.OutputStereoLinks, &state.OutputStereoLinks); err != nil {
			return nil, nil, migrate.Result{}, err
		}
	}

	if consoles.IsChannelMode(rec.InputChannelMode) && rec.InputChannelMode != len(state.InputChannels) {
		p := channels.NewInputPatchFrom(state.InputChannels)
		p.Resize(rec.InputChannelMode)
		state.InputChannels = p.Snapshot()
	}
	if consoles.IsChannelMode(rec.OutputChannelMode) && rec.OutputChannelMode != len(state.OutputChannels) {
		p := channels.NewOutputPatchFrom(state.OutputChannels)
		p.Resize(rec.OutputChannelMode)
		state.OutputChannels = p.Snapshot()
	}

	return plot.FromState(state, opts...), meta, res, nil
}

// Encode serializes a document, including its history, into a row
func Encode(doc *plot.Document) (*repository.PlotRecord, error) {
	st := doc.State()
	meta := migrate.FromModel(st.Items, st.Outputs, st.InputChannels, st.OutputChannels, st.OutputStereoLinks)

	h := doc.History()
	undoLog, err := json.Marshal(h.Entries())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "failed to encode undo log")
	}
	redo, err := json.Marshal(h.RedoStack())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "failed to encode redo stack")
	}
	meta.UndoLog = undoLog
	meta.RedoStack = redo

	blob, err := json.Marshal(meta)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "failed to encode plot metadata")
	}

	rec := &repository.PlotRecord{
		ID:                st.ID,
		BandID:            st.BandID,
		Name:              st.Name,
		RevisionDate:      st.RevisionDate,
		CanvasWidth:       st.CanvasWidth,
		CanvasHeight:      math.Round(st.CanvasWidth * st.StageDepth / st.StageWidth),
		StageWidth:        st.StageWidth,
		StageDepth:        st.StageDepth,
		ConsoleType:       st.ConsoleType,
		InputChannelMode:  len(st.InputChannels),
		OutputChannelMode: len(st.OutputChannels),
		IsTemplate:        st.IsTemplate,
		SourcePlotID:      st.SourcePlotID,
		Metadata:          string(blob),
		PersonIDs:         st.PersonIDs,
	}
	if rec.StereoLinks, err = marshalColumn(st.StereoLinks); err != nil {
		return nil, err
	}
	if rec.OutputStereoLinks, err = marshalColumn(st.OutputStereoLinks); err != nil {
		return nil, err
	}
	if rec.CategoryColorDefaults, err = marshalColumn(st.CategoryColorDefaults); err != nil {
		return nil, err
	}
	return rec, nil
}

func unmarshalColumn(raw string, v interface{}) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal, "corrupt plot column")
	}
	return nil
}

func marshalColumn(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternal, "failed to encode plot column")
	}
	return string(b), nil
}

package repository

import (
	"context"

	"github.com/abrezinsky/stageplot/internal/models"
)

// PlotRepository defines stage plot data operations
type PlotRepository interface {
	GetPlot(ctx context.Context, id string) (*PlotRecord, error)
	SavePlot(ctx context.Context, rec *PlotRecord) error
	DeletePlot(ctx context.Context, id string) error
	ListPlots(ctx context.Context, bandID string, templates bool) ([]models.PlotSummary, error)
	GetPlotPersons(ctx context.Context, plotID string) ([]int, error)
}

// BandRepository defines band data operations
type BandRepository interface {
	ListBands(ctx context.Context) ([]models.Band, error)
	GetBand(ctx context.Context, id string) (*models.Band, error)
	CreateBand(ctx context.Context, id, name string) error
	RenameBand(ctx context.Context, id, name string) error
	DeleteBand(ctx context.Context, id string) error
}

// PersonRepository defines person data operations
type PersonRepository interface {
	ListPersons(ctx context.Context, bandID string) ([]models.Person, error)
	GetPerson(ctx context.Context, id int) (*models.Person, error)
	CreatePerson(ctx context.Context, p models.Person) (int64, error)
	UpdatePerson(ctx context.Context, p models.Person) error
	DeletePerson(ctx context.Context, id int) error
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	PlotRepository
	BandRepository
	PersonRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)

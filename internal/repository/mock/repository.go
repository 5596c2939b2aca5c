package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SavePlotError = errors.New("database error")
//	store := persist.NewStore(mockRepo, log)
//	err := store.Save(ctx, doc)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	mu        sync.Mutex
	saveCalls int
	lastSaved *repository.PlotRecord

	// ===== Plot Errors =====
	GetPlotError        error
	SavePlotError       error
	DeletePlotError     error
	ListPlotsError      error
	GetPlotPersonsError error

	// ===== Band Errors =====
	ListBandsError  error
	GetBandError    error
	CreateBandError error
	DeleteBandError error

	// ===== Person Errors =====
	ListPersonsError  error
	GetPersonError    error
	CreatePersonError error
	UpdatePersonError error
	DeletePersonError error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// SaveCalls returns how many times SavePlot was called, including failures
func (m *Repository) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

// LastSaved returns the record passed to the most recent SavePlot call
func (m *Repository) LastSaved() *repository.PlotRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSaved
}

// ===== Plot Methods =====

func (m *Repository) GetPlot(ctx context.Context, id string) (*repository.PlotRecord, error) {
	if m.GetPlotError != nil {
		return nil, m.GetPlotError
	}
	return m.FullRepository.GetPlot(ctx, id)
}

func (m *Repository) SavePlot(ctx context.Context, rec *repository.PlotRecord) error {
	m.mu.Lock()
	m.saveCalls++
	copied := *rec
	m.lastSaved = &copied
	saveErr := m.SavePlotError
	m.mu.Unlock()

	if saveErr != nil {
		return saveErr
	}
	return m.FullRepository.SavePlot(ctx, rec)
}

// SetSavePlotError changes the injected save error while writers may be running
func (m *Repository) SetSavePlotError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SavePlotError = err
}

func (m *Repository) DeletePlot(ctx context.Context, id string) error {
	if m.DeletePlotError != nil {
		return m.DeletePlotError
	}
	return m.FullRepository.DeletePlot(ctx, id)
}

func (m *Repository) ListPlots(ctx context.Context, bandID string, templates bool) ([]models.PlotSummary, error) {
	if m.ListPlotsError != nil {
		return nil, m.ListPlotsError
	}
	return m.FullRepository.ListPlots(ctx, bandID, templates)
}

func (m *Repository) GetPlotPersons(ctx context.Context, plotID string) ([]int, error) {
	if m.GetPlotPersonsError != nil {
		return nil, m.GetPlotPersonsError
	}
	return m.FullRepository.GetPlotPersons(ctx, plotID)
}

// ===== Band Methods =====

func (m *Repository) ListBands(ctx context.Context) ([]models.Band, error) {
	if m.ListBandsError != nil {
		return nil, m.ListBandsError
	}
	return m.FullRepository.ListBands(ctx)
}

func (m *Repository) GetBand(ctx context.Context, id string) (*models.Band, error) {
	if m.GetBandError != nil {
		return nil, m.GetBandError
	}
	return m.FullRepository.GetBand(ctx, id)
}

func (m *Repository) CreateBand(ctx context.Context, id, name string) error {
	if m.CreateBandError != nil {
		return m.CreateBandError
	}
	return m.FullRepository.CreateBand(ctx, id, name)
}

func (m *Repository) DeleteBand(ctx context.Context, id string) error {
	if m.DeleteBandError != nil {
		return m.DeleteBandError
	}
	return m.FullRepository.DeleteBand(ctx, id)
}

// ===== Person Methods =====

func (m *Repository) ListPersons(ctx context.Context, bandID string) ([]models.Person, error) {
	if m.ListPersonsError != nil {
		return nil, m.ListPersonsError
	}
	return m.FullRepository.ListPersons(ctx, bandID)
}

func (m *Repository) GetPerson(ctx context.Context, id int) (*models.Person, error) {
	if m.GetPersonError != nil {
		return nil, m.GetPersonError
	}
	return m.FullRepository.GetPerson(ctx, id)
}

func (m *Repository) CreatePerson(ctx context.Context, p models.Person) (int64, error) {
	if m.CreatePersonError != nil {
		return 0, m.CreatePersonError
	}
	return m.FullRepository.CreatePerson(ctx, p)
}

func (m *Repository) UpdatePerson(ctx context.Context, p models.Person) error {
	if m.UpdatePersonError != nil {
		return m.UpdatePersonError
	}
	return m.FullRepository.UpdatePerson(ctx, p)
}

func (m *Repository) DeletePerson(ctx context.Context, id int) error {
	if m.DeletePersonError != nil {
		return m.DeletePersonError
	}
	return m.FullRepository.DeletePerson(ctx, id)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}

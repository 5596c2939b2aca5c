package services

import (
	"context"
	"time"

	"github.com/abrezinsky/stageplot/internal/migrate"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/plot"
	"github.com/abrezinsky/stageplot/internal/share"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

// PlotServicer defines the interface for plot operations
type PlotServicer interface {
	Open(ctx context.Context, id string) (*Session, error)
	Edit(ctx context.Context, id string, fn func(d *plot.Document) error) error
	Get(ctx context.Context, id string) (*PlotView, error)
	Create(ctx context.Context, bandID, name string) (string, error)
	List(ctx context.Context, bandID string) ([]models.PlotSummary, error)
	ListTemplates(ctx context.Context, bandID string) ([]models.PlotSummary, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id, name string) (string, error)
	SaveAsTemplate(ctx context.Context, id, name string) (string, error)
	CreateFromTemplate(ctx context.Context, templateID, bandID, name string) (string, error)
	Undo(ctx context.Context, id string) (bool, error)
	Redo(ctx context.Context, id string) (bool, error)
	Flush(ctx context.Context, id string) error
	FlushAll(ctx context.Context) error
	CloseAll(ctx context.Context) error
	Upgrade(ctx context.Context, id string) (migrate.Result, error)
	Channels(ctx context.Context, id string) ([]models.InputChannel, error)
	ExportScene(ctx context.Context, id string) (*SceneFile, error)
	SetBroadcaster(b Broadcaster)
}

// ShareServicer defines the interface for share link operations
type ShareServicer interface {
	Catalog(ctx context.Context) ([]catalog.Entry, catalog.Index, error)
	Encode(ctx context.Context, plotID string) (*ShareLink, error)
	QRCode(ctx context.Context, plotID string) ([]byte, error)
	Decode(ctx context.Context, payloadOrURL string) (*share.DecodedPlot, error)
	Import(ctx context.Context, bandID, payloadOrURL, name string) (string, error)
}

// BandServicer defines the interface for band and person operations
type BandServicer interface {
	ListBands(ctx context.Context) ([]models.Band, error)
	CreateBand(ctx context.Context, name string) (string, error)
	DeleteBand(ctx context.Context, id string) error
	ListPersons(ctx context.Context, bandID string) ([]models.Person, error)
	CreatePerson(ctx context.Context, p models.Person) (int64, error)
	DeletePerson(ctx context.Context, id int) error
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetShareBaseURL(ctx context.Context) (string, error)
	SetShareBaseURL(ctx context.Context, url string) error
	GetDefaultConsole(ctx context.Context) (string, error)
	SetDefaultConsole(ctx context.Context, id string) error
	GetWriteDebounce(ctx context.Context) (time.Duration, error)
	SetWriteDebounce(ctx context.Context, ms int) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	SetSessionCloser(c SessionCloser)
}

// Ensure concrete types implement interfaces
var (
	_ PlotServicer     = (*PlotService)(nil)
	_ ShareServicer    = (*ShareService)(nil)
	_ BandServicer     = (*BandService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
	_ SessionCloser    = (*PlotService)(nil)
)

package handlers

import (
	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/services"
	"github.com/abrezinsky/stageplot/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Plots    services.PlotServicer
	Share    services.ShareServicer
	Bands    services.BandServicer
	Settings services.SettingsServicer
	Auth     *auth.Auth
	Hub      *websocket.Hub
	Log      HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	plots services.PlotServicer,
	share services.ShareServicer,
	bands services.BandServicer,
	settings services.SettingsServicer,
	editorAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Plots:    plots,
		Share:    share,
		Bands:    bands,
		Settings: settings,
		Auth:     editorAuth,
		Hub:      hub,
		Log:      log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known editor password
// and no websocket hub
func NewForTesting(
	plots services.PlotServicer,
	share services.ShareServicer,
	bands services.BandServicer,
	settings services.SettingsServicer,
) *Handlers {
	return &Handlers{
		Plots:    plots,
		Share:    share,
		Bands:    bands,
		Settings: settings,
		Auth:     auth.New("test-password"),
		Log:      NoopHTTPLogger{},
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/config"
	"github.com/abrezinsky/stageplot/internal/handlers"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/repository"
	"github.com/abrezinsky/stageplot/internal/services"
	"github.com/abrezinsky/stageplot/internal/websocket"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

// shutdownTimeout bounds how long Run waits for in-flight requests
const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
	plots    *services.PlotService
	settings *services.SettingsService
	share    *services.ShareService
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, catalogClient catalog.Client, editorAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	settingsService := services.NewSettingsService(log, repo)
	defaults, delay, err := editorDefaults(ctx, repo, settingsService, cfg)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to read editor settings: %w", err)
	}

	// Initialize services
	plotService := services.NewPlotService(log, repo,
		services.WithWriteDelay(delay),
		services.WithDefaults(defaults),
	)
	settingsService.SetSessionCloser(plotService)
	if cfg.Server.BaseURL != "" {
		if err := settingsService.SetShareBaseURL(ctx, cfg.Server.BaseURL); err != nil {
			log.Warn("Failed to set share base URL", "error", err)
		}
	}
	bandService := services.NewBandService(log, repo)
	shareService := services.NewShareService(log, repo, plotService, settingsService, catalogClient)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, plotService)
	hub.Start()
	plotService.SetBroadcaster(hub)

	h := handlers.New(
		plotService,
		shareService,
		bandService,
		settingsService,
		editorAuth,
		hub,
		log,
	)

	return &App{
		log:      log,
		cfg:      cfg,
		handlers: h,
		repo:     repo,
		plots:    plotService,
		settings: settingsService,
		share:    shareService,
	}, nil
}

// editorDefaults merges stored editor settings over the configured ones.
// Stored values come from the settings API and outlive config edits.
func editorDefaults(ctx context.Context, repo repository.SettingsRepository, settings *services.SettingsService, cfg *config.Config) (services.Defaults, time.Duration, error) {
	defaults := services.Defaults{
		ConsoleType:    cfg.Editor.Console,
		InputChannels:  cfg.Editor.InputChannels,
		OutputChannels: cfg.Editor.OutputChannels,
		StageWidth:     cfg.Editor.StageWidth,
		StageDepth:     cfg.Editor.StageDepth,
		CanvasWidth:    cfg.Editor.CanvasWidth,
	}

	console, err := settings.GetDefaultConsole(ctx)
	if err != nil {
		return defaults, 0, err
	}
	if console != "" {
		defaults.ConsoleType = console
	}

	delay := cfg.WriteDebounce()
	if _, err := repo.GetSetting(ctx, services.SettingWriteDebounce); err == nil {
		if delay, err = settings.GetWriteDebounce(ctx); err != nil {
			return defaults, 0, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return defaults, 0, err
	}
	return defaults, delay, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Plots returns the plot service, for commands that work without HTTP
func (a *App) Plots() *services.PlotService {
	return a.plots
}

// Share returns the share link service
func (a *App) Share() *services.ShareService {
	return a.share
}

// Close flushes pending saves and closes the database
func (a *App) Close() error {
	flushErr := a.plots.CloseAll(context.Background())
	if err := a.repo.Close(); err != nil {
		return err
	}
	return flushErr
}

// Run serves HTTP on addr until ctx is cancelled, then shuts the server
// down and flushes every open plot
func (a *App) Run(ctx context.Context, addr string) error {
	baseURL := a.configureBaseURL(ctx, addr)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Editor URL", "url", EditorURL(addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("Server shutdown incomplete", "error", err)
	}
	if err := a.plots.FlushAll(shutdownCtx); err != nil {
		return fmt.Errorf("failed to flush plots: %w", err)
	}
	return nil
}

// EditorURL is the local editor address for a listen address
func EditorURL(addr string) string {
	host := addr
	if strings.HasPrefix(addr, ":") {
		host = "localhost" + addr
	}
	return "http://" + host + "/"
}

// configureBaseURL picks the share base URL. A configured URL always wins;
// otherwise the detected LAN address replaces an empty or localhost value.
func (a *App) configureBaseURL(ctx context.Context, addr string) string {
	if a.cfg.Server.BaseURL != "" {
		if err := a.settings.SetShareBaseURL(ctx, a.cfg.Server.BaseURL); err != nil {
			a.log.Warn("Failed to set share base URL", "error", err)
		}
		return a.cfg.Server.BaseURL
	}

	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(ctx, baseURL)
	return baseURL
}

// setDefaultBaseURL sets the share base URL if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(ctx context.Context, baseURL string) {
	existing, _ := a.settings.GetShareBaseURL(ctx)

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.settings.SetShareBaseURL(ctx, baseURL); err != nil {
			a.log.Warn("Failed to set default share base URL", "error", err)
		} else {
			a.log.Info("Default share base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags           { return r.iface.Flags }
func (r realInterface) Addrs() ([]net.Addr, error) { return r.iface.Addrs() }

// networkProvider lists network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the address a phone on the same LAN can reach:
// the first private IPv4 address, else the first non-loopback IPv4
// address, else localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var fallback net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := ipv4Of(addr)
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			if fallback == nil {
				fallback = ip
			}
		}
	}

	if fallback != nil {
		return fallback.String()
	}
	return "localhost"
}

func ipv4Of(addr net.Addr) net.IP {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	}
	return ip.To4()
}

package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/stageplot/internal/consoles"
	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/persist"
	"github.com/abrezinsky/stageplot/internal/repository"
)

// Setting keys
const (
	SettingDefaultConsole = "default_console"
	SettingShareBaseURL   = "share_base_url"
	SettingWriteDebounce  = "write_debounce_ms"
)

// SessionCloser drops open plot sessions after their rows were removed
type SessionCloser interface {
	CloseAll(ctx context.Context) error
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log      logger.Logger
	repo     repository.SettingsRepository
	sessions SessionCloser
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetSessionCloser sets what to close when plot tables are reset
func (s *SettingsService) SetSessionCloser(c SessionCloser) {
	s.sessions = c
}

// GetShareBaseURL returns the base URL share links are built on
func (s *SettingsService) GetShareBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, SettingShareBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err // Propagate database errors
	}
	return value, nil
}

// SetShareBaseURL saves the share base URL without a trailing slash
func (s *SettingsService) SetShareBaseURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, SettingShareBaseURL, strings.TrimRight(strings.TrimSpace(url), "/"))
}

// GetDefaultConsole returns the console new plots are patched for
func (s *SettingsService) GetDefaultConsole(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, SettingDefaultConsole)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetDefaultConsole saves the default console; empty means none
func (s *SettingsService) SetDefaultConsole(ctx context.Context, id string) error {
	if id != "" {
		if _, ok := consoles.Get(id); !ok {
			return apperrors.Validationf("unknown console %q", id)
		}
	}
	return s.repo.SetSetting(ctx, SettingDefaultConsole, id)
}

// GetWriteDebounce returns the background save delay
func (s *SettingsService) GetWriteDebounce(ctx context.Context) (time.Duration, error) {
	value, err := s.repo.GetSetting(ctx, SettingWriteDebounce)
	if err != nil {
		if err == repository.ErrNotFound {
			return persist.DefaultDebounce, nil
		}
		return 0, err
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return persist.DefaultDebounce, nil // Invalid value, use the default
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// SetWriteDebounce saves the background save delay in milliseconds
func (s *SettingsService) SetWriteDebounce(ctx context.Context, ms int) error {
	if ms < 50 || ms > 10000 {
		return ErrInvalidDebounce
	}
	return s.repo.SetSetting(ctx, SettingWriteDebounce, strconv.Itoa(ms))
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	baseURL, _ := s.GetShareBaseURL(ctx)
	settings[SettingShareBaseURL] = baseURL

	console, _ := s.GetDefaultConsole(ctx)
	settings[SettingDefaultConsole] = console

	debounce, _ := s.GetWriteDebounce(ctx)
	settings[SettingWriteDebounce] = debounce.Milliseconds()

	return settings, nil
}

// Settings represents application settings for update operations
type Settings struct {
	ShareBaseURL    string
	DefaultConsole  *string
	WriteDebounceMS int
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.ShareBaseURL != "" {
		if err := s.SetShareBaseURL(ctx, settings.ShareBaseURL); err != nil {
			return err
		}
	}
	if settings.DefaultConsole != nil {
		if err := s.SetDefaultConsole(ctx, *settings.DefaultConsole); err != nil {
			return err
		}
	}
	if settings.WriteDebounceMS != 0 {
		if err := s.SetWriteDebounce(ctx, settings.WriteDebounceMS); err != nil {
			return err
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"stage_plots": true, "plot_persons": true, "persons": true, "bands": true, "settings": true,
}

// ResetTables validates and resets the specified database tables
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	// Validate tables
	var tablesToReset []string
	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
		tablesToReset = append(tablesToReset, table)
	}

	// Bands own plots and persons
	if containsTable(tablesToReset, "bands") {
		for _, dep := range []string{"persons", "stage_plots"} {
			if !containsTable(tablesToReset, dep) {
				tablesToReset = append([]string{dep}, tablesToReset...)
			}
		}
	}
	// Auto-add plot_persons if either side of the link is being reset
	if (containsTable(tablesToReset, "stage_plots") || containsTable(tablesToReset, "persons")) &&
		!containsTable(tablesToReset, "plot_persons") {
		tablesToReset = append([]string{"plot_persons"}, tablesToReset...)
	}

	// Open sessions would write deleted plots back
	if containsTable(tablesToReset, "stage_plots") && s.sessions != nil {
		if err := s.sessions.CloseAll(ctx); err != nil {
			s.log.Warn("Flush before reset failed", "error", err)
		}
	}

	// Delete data from each table
	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}
	s.log.Info("Tables reset", "tables", tablesToReset)

	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/abrezinsky/stageplot/internal/app"
	"github.com/abrezinsky/stageplot/internal/auth"
	"github.com/abrezinsky/stageplot/internal/config"
	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

// errDatabaseInUse is returned when another stageplot process holds the
// database lock
var errDatabaseInUse = errors.New("database is in use by another stageplot process")

type globalFlags struct {
	config   string
	db       string
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the config file once and applies flag overrides
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if db := strings.TrimSpace(c.flags.db); db != "" {
		if db == ":memory:" {
			cfg.Storage.DBPath = db
			cfg.Storage.Lock = false
		} else {
			expanded, err := config.ExpandPath(db)
			if err != nil {
				return fmt.Errorf("resolve --db: %w", err)
			}
			cfg.Storage.DBPath = expanded
		}
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	return cfg.Validate()
}

func (c *commandContext) newLogger(w io.Writer) *logger.SlogLogger {
	cfg := c.config
	log := logger.NewWithWriter(w, logger.ParseLevel(cfg.Logging.Level), logger.ParseFormat(cfg.Logging.Format))
	if cfg.Logging.HTTP {
		log.EnableHTTPLogging()
	}
	return log
}

func catalogClient(cfg *config.Config, log logger.Logger) catalog.Client {
	return catalog.New(cfg.Catalog.Path, cfg.Catalog.URL, cfg.CatalogTimeout(), log)
}

// lockDatabase takes the single-writer lock on the database. The returned
// func releases it.
func lockDatabase(cfg *config.Config) (func(), error) {
	if !cfg.Storage.Lock {
		return func() {}, nil
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", errDatabaseInUse, cfg.LockPath())
	}
	return func() { _ = lock.Unlock() }, nil
}

// withApp runs fn against an app without an HTTP server. Logs go to the
// command's stderr so stdout stays clean for output.
func (c *commandContext) withApp(cmd *cobra.Command, editorAuth *auth.Auth, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	unlock, err := lockDatabase(cfg)
	if err != nil {
		return err
	}
	defer unlock()

	log := c.newLogger(cmd.ErrOrStderr())
	a, err := app.New(log, cfg, catalogClient(cfg, log), editorAuth)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

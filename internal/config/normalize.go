package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeEditor()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.EditorPassword == "" {
		if value, ok := os.LookupEnv(editorPasswordEnv); ok {
			c.Server.EditorPassword = value
		}
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.DBPath = strings.TrimSpace(c.Storage.DBPath)
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = defaultDBPath
	}
	if c.Storage.DBPath == ":memory:" {
		c.Storage.Lock = false
		return nil
	}
	var err error
	if c.Storage.DBPath, err = ExpandPath(c.Storage.DBPath); err != nil {
		return fmt.Errorf("storage.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeEditor() {
	c.Editor.Console = strings.ToLower(strings.TrimSpace(c.Editor.Console))
	if c.Editor.Console == "" {
		c.Editor.Console = defaultConsole
	}
	if c.Editor.CanvasWidth == 0 {
		c.Editor.CanvasWidth = defaultCanvasWidth
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.URL = strings.TrimSpace(c.Catalog.URL)
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.TimeoutSeconds == 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
	if c.Catalog.Path == "" {
		return nil
	}
	var err error
	if c.Catalog.Path, err = ExpandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

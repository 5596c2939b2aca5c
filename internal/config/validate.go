package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/abrezinsky/stageplot/internal/consoles"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEditor(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.BaseURL != "" {
		if err := validateHTTPURL(c.Server.BaseURL); err != nil {
			return fmt.Errorf("server.base_url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateEditor() error {
	if c.Editor.WriteDebounceMS < minWriteDebounceMS || c.Editor.WriteDebounceMS > maxWriteDebounceMS {
		return fmt.Errorf("editor.write_debounce_ms must be between %d and %d", minWriteDebounceMS, maxWriteDebounceMS)
	}
	if c.Editor.CanvasWidth < 0 {
		return errors.New("editor.canvas_width must not be negative")
	}
	if _, ok := consoles.Get(c.Editor.Console); !ok {
		return fmt.Errorf("editor.console %q is not one of %s", c.Editor.Console, strings.Join(consoles.IDs(), ", "))
	}
	if !consoles.IsChannelMode(c.Editor.InputChannels) {
		return fmt.Errorf("editor.input_channels must be one of %v", consoles.ChannelModes)
	}
	if !consoles.IsChannelMode(c.Editor.OutputChannels) {
		return fmt.Errorf("editor.output_channels must be one of %v", consoles.ChannelModes)
	}
	if c.Editor.StageWidth <= 0 || c.Editor.StageDepth <= 0 {
		return errors.New("editor.stage_width and editor.stage_depth must be positive")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.TimeoutSeconds < 0 || c.Catalog.TimeoutSeconds > maxCatalogTimeoutSecond {
		return fmt.Errorf("catalog.timeout_seconds must be between 1 and %d", maxCatalogTimeoutSecond)
	}
	if c.Catalog.Path == "" && c.Catalog.URL != "" {
		if err := validateHTTPURL(c.Catalog.URL); err != nil {
			return fmt.Errorf("catalog.url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of auto, text, json", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

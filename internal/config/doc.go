// Package config loads stageplot configuration from TOML.
//
// Values start from Default, are overlaid by the file found at the
// requested path (or ~/.config/stageplot/config.toml, then ./stageplot.toml),
// and are finally normalized and validated. Command line flags override
// the loaded values in cmd/stageplot.
package config

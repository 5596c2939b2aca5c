package config

const (
	defaultPort             = 8081
	defaultDBPath           = "~/.local/share/stageplot/stageplot.db"
	defaultWriteDebounceMS  = 300
	defaultCanvasWidth      = 1100.0
	defaultConsole          = "x32"
	defaultInputChannels    = 48
	defaultOutputChannels   = 16
	defaultStageWidth       = 24.0
	defaultStageDepth       = 16.0
	defaultCatalogTimeout   = 10
	defaultLogLevel         = "info"
	defaultLogFormat        = "auto"
	defaultConfigPath       = "~/.config/stageplot/config.toml"
	projectConfigName       = "stageplot.toml"
	editorPasswordEnv       = "STAGEPLOT_EDITOR_PASSWORD"
	minWriteDebounceMS      = 50
	maxWriteDebounceMS      = 10000
	maxCatalogTimeoutSecond = 300
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Port:        defaultPort,
			OpenBrowser: true,
		},
		Storage: Storage{
			DBPath: defaultDBPath,
			Lock:   true,
		},
		Editor: Editor{
			WriteDebounceMS: defaultWriteDebounceMS,
			CanvasWidth:     defaultCanvasWidth,
			Console:         defaultConsole,
			InputChannels:   defaultInputChannels,
			OutputChannels:  defaultOutputChannels,
			StageWidth:      defaultStageWidth,
			StageDepth:      defaultStageDepth,
		},
		Catalog: Catalog{
			TimeoutSeconds: defaultCatalogTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

package config

const (
	defaultStateDir            = "~/.local/share/stylegen"
	defaultOutputDir           = "~/stylegen/exports"
	defaultLogDir              = "~/.local/share/stylegen/logs"
	defaultTemplateCSV         = "~/.config/stylegen/templates.csv"
	defaultGeminiModel         = "gemini-1.5-flash"
	defaultGeminiTemperature   = 0.2
	defaultGeminiTimeout       = 60
	defaultGeminiMaxRetries    = 3
	defaultConcurrency         = 2
	maxConcurrency             = 16
	defaultStageTimeoutSeconds = 90
	defaultMaxAlternatives     = 4
	defaultMatcher             = "keyword"
	defaultCacheBackend        = "file"
	defaultCacheTTLDays        = 30
	defaultCacheKeyPrefix      = "stylegen:"
	defaultRedisAddr           = "localhost:6379"
	defaultExportPrefix        = "hairstyle_analysis"
	defaultTableFormat         = "xlsx"
	defaultTextFormat          = "txt"
	defaultNtfyTimeout         = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	hotPepperBeautyPrefix      = "https://beauty.hotpepper.jp/"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			TemplateCSV: defaultTemplateCSV,
		},
		Gemini: Gemini{
			Model:          defaultGeminiModel,
			Temperature:    defaultGeminiTemperature,
			TimeoutSeconds: defaultGeminiTimeout,
			MaxRetries:     defaultGeminiMaxRetries,
		},
		Processing: Processing{
			Concurrency:         defaultConcurrency,
			StageTimeoutSeconds: defaultStageTimeoutSeconds,
			UseCache:            true,
			MaxAlternatives:     defaultMaxAlternatives,
			Matcher:             defaultMatcher,
		},
		Cache: Cache{
			Backend:   defaultCacheBackend,
			TTLDays:   defaultCacheTTLDays,
			RedisAddr: defaultRedisAddr,
			KeyPrefix: defaultCacheKeyPrefix,
		},
		Export: Export{
			Prefix:      defaultExportPrefix,
			TableFormat: defaultTableFormat,
			TextFormat:  defaultTextFormat,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

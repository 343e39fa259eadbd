package config

const (
	defaultDataDir          = "~/.local/share/artidicia"
	defaultLogDir           = "~/.local/share/artidicia/logs"
	defaultExportDir        = "~/artidicia/exports"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultMaxDimension     = 1536
	defaultFallbackFPS      = 30
	defaultJPEGQuality      = 90
	defaultSamplingStrategy = "interval"
	defaultSamplingInterval = 2
	defaultLLMBaseURL       = "http://localhost:11434/v1"
	defaultLLMModel         = "gemini-3-pro-preview"
	defaultLLMTemperature   = 0.7
	defaultLLMMaxTemp       = 2.0
	defaultLLMTimeout       = 600
	defaultMinDetectLength  = 20
	defaultJSONExtraction   = "greedy"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			MaxDimension:  defaultMaxDimension,
			FallbackFPS:   defaultFallbackFPS,
			JPEGQuality:   defaultJPEGQuality,
		},
		Sampling: Sampling{
			Strategy: defaultSamplingStrategy,
			Value:    defaultSamplingInterval,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Temperature:    defaultLLMTemperature,
			MaxTemperature: defaultLLMMaxTemp,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Stream: Stream{
			MinDetectLength: defaultMinDetectLength,
			JSONExtraction:  defaultJSONExtraction,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

const (
	defaultDataDir  = "~/.local/share/veritext/data"
	defaultModelDir = "~/.local/share/veritext/models"
	defaultLogDir   = "~/.local/share/veritext/logs"
	defaultAPIBind  = "127.0.0.1:7841"

	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	defaultSeed              = 42
	defaultEpochs            = 150
	defaultBatchSize         = 32
	defaultLearningRate      = 0.0005
	defaultEarlyStopPatience = 10
	defaultPlateauPatience   = 3
	defaultPlateauFactor     = 0.5

	defaultMinTextLength         = 10
	defaultDetectTimeoutSeconds  = 30
	defaultExtractTimeoutSeconds = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			ModelDir: defaultModelDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Training: Training{
			Seed:              defaultSeed,
			Epochs:            defaultEpochs,
			BatchSize:         defaultBatchSize,
			LearningRate:      defaultLearningRate,
			EarlyStopPatience: defaultEarlyStopPatience,
			PlateauPatience:   defaultPlateauPatience,
			PlateauFactor:     defaultPlateauFactor,
		},
		Detection: Detection{
			MinTextLength:         defaultMinTextLength,
			DetectTimeoutSeconds:  defaultDetectTimeoutSeconds,
			ExtractTimeoutSeconds: defaultExtractTimeoutSeconds,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	ModelDir string `toml:"model_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// Training contains knobs for the model training pipeline.
type Training struct {
	CorpusPath        string  `toml:"corpus_path"`
	Seed              int64   `toml:"seed"`
	Epochs            int     `toml:"epochs"`
	BatchSize         int     `toml:"batch_size"`
	LearningRate      float64 `toml:"learning_rate"`
	EarlyStopPatience int     `toml:"early_stop_patience"`
	PlateauPatience   int     `toml:"plateau_patience"`
	PlateauFactor     float64 `toml:"plateau_factor"`
}

// Detection contains knobs for the inference service.
type Detection struct {
	MinTextLength         int `toml:"min_text_length"`
	DetectTimeoutSeconds  int `toml:"detect_timeout_seconds"`
	ExtractTimeoutSeconds int `toml:"extract_timeout_seconds"`
}

// Config encapsulates all configuration values for veritext.
//
// Configuration sections by subsystem:
//   - Paths: data/model/log directories and API bind address
//   - Training: optimizer, schedule, and corpus settings
//   - Detection: inference-time validation and timeout settings
type Config struct {
	Paths     Paths     `toml:"paths"`
	Training  Training  `toml:"training"`
	Detection Detection `toml:"detection"`
	LogLevel  string    `toml:"log_level"`
	LogFormat string    `toml:"log_format"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/veritext/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.normalizePaths(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data, model, and log directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ModelDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		candidate = defaultPath
	} else {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		candidate = expanded
	}

	info, err := os.Stat(candidate)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", candidate)
		}
		return candidate, true, nil
	case os.IsNotExist(err):
		return candidate, false, nil
	default:
		return "", false, fmt.Errorf("stat config %s: %w", candidate, err)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("VERITEXT_MODEL_DIR")); v != "" {
		cfg.Paths.ModelDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VERITEXT_DATA_DIR")); v != "" {
		cfg.Paths.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VERITEXT_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
}

func (c *Config) normalizePaths() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.ModelDir, &c.Paths.LogDir, &c.Training.CorpusPath} {
		if *field == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		trimmed = filepath.Join(home, trimmed[2:])
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return abs, nil
}

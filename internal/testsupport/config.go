package testsupport

import (
	"path/filepath"
	"testing"

	"veritext/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields, creates the directories, and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ModelDir = filepath.Join(base, "models")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	cfg := &cfgVal
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return cfg
}

// WithSeed overrides the training seed on the test config.
func WithSeed(seed int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Training.Seed = seed
	}
}

// WithAPIBind overrides the API bind address on the test config.
func WithAPIBind(bind string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIBind = bind
	}
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"veritext/internal/config"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantModels := filepath.Join(tempHome, ".local", "share", "veritext", "models")
	if cfg.Paths.ModelDir != wantModels {
		t.Fatalf("unexpected model dir: got %q want %q", cfg.Paths.ModelDir, wantModels)
	}
	if cfg.Training.Seed != 42 {
		t.Fatalf("unexpected default seed: %d", cfg.Training.Seed)
	}
	if cfg.Training.Epochs != 150 {
		t.Fatalf("unexpected default epochs: %d", cfg.Training.Epochs)
	}
	if cfg.Training.LearningRate != 0.0005 {
		t.Fatalf("unexpected default learning rate: %g", cfg.Training.LearningRate)
	}
	if cfg.Detection.MinTextLength != 10 {
		t.Fatalf("unexpected default min text length: %d", cfg.Detection.MinTextLength)
	}
	if cfg.LogFormat != "console" {
		t.Fatalf("unexpected default log format: %q", cfg.LogFormat)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfgPath := filepath.Join(tempHome, "veritext.toml")
	body := `
log_level = "debug"

[paths]
model_dir = "~/models"

[training]
epochs = 20
batch_size = 64
`
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.ModelDir != filepath.Join(tempHome, "models") {
		t.Fatalf("expected expanded model dir, got %q", cfg.Paths.ModelDir)
	}
	if cfg.Training.Epochs != 20 || cfg.Training.BatchSize != 64 {
		t.Fatalf("unexpected training values: %+v", cfg.Training)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
}

func TestEnvOverridesModelDir(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	override := filepath.Join(tempHome, "override-models")
	t.Setenv("VERITEXT_MODEL_DIR", override)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.ModelDir != override {
		t.Fatalf("expected env override %q, got %q", override, cfg.Paths.ModelDir)
	}
}

func TestValidateRejectsBadTrainingValues(t *testing.T) {
	cfg := config.Default()
	cfg.Training.PlateauFactor = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for plateau factor")
	}

	cfg = config.Default()
	cfg.Training.BatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for batch size")
	}

	cfg = config.Default()
	cfg.Detection.MinTextLength = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for min text length")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}

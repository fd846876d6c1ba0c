package logging_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"veritext/internal/logging"
	"veritext/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "veritext.log")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("model published", logging.String("run_id", "abc123"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "model published") {
		t.Fatalf("missing message in output: %q", out)
	}
	if !strings.Contains(out, "run_id=abc123") {
		t.Fatalf("missing attr in output: %q", out)
	}
}

func TestWithContextStampsRunAndStage(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithStage(ctx, "training")

	fields := logging.ContextFields(ctx)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value.String()
	}
	if got[logging.FieldRunID] != "run-1" {
		t.Fatalf("expected run id field, got %v", got)
	}
	if got[logging.FieldStage] != "training" {
		t.Fatalf("expected stage field, got %v", got)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled at any level")
	}
}

package artifacts_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"veritext/internal/artifacts"
	"veritext/internal/convnet"
	"veritext/internal/scaler"
	"veritext/internal/services"
)

func TestLoadMissingBundle(t *testing.T) {
	_, err := artifacts.Load(t.TempDir())
	if !errors.Is(err, services.ErrModelNotTrained) {
		t.Fatalf("got %v, want ErrModelNotTrained", err)
	}
}

func TestPublishAndLoadRoundTrip(t *testing.T) {
	modelDir := t.TempDir()
	manifest := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	if err := artifacts.Publish(modelDir, func(dir string) error {
		return writeBundle(t, dir, manifest)
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	bundle, err := artifacts.Load(modelDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(bundle.Manifest) != len(manifest) {
		t.Fatalf("manifest length %d, want %d", len(bundle.Manifest), len(manifest))
	}
	if bundle.Network.InputDim() != len(manifest) {
		t.Fatalf("network input %d, want %d", bundle.Network.InputDim(), len(manifest))
	}
	if _, err := os.Stat(artifacts.MetricsPath(modelDir)); err != nil {
		t.Fatalf("metrics report missing: %v", err)
	}
}

func TestPublishIncompleteBundleLeavesCurrentIntact(t *testing.T) {
	modelDir := t.TempDir()
	manifest := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	if err := artifacts.Publish(modelDir, func(dir string) error {
		return writeBundle(t, dir, manifest)
	}); err != nil {
		t.Fatalf("first Publish: %v", err)
	}

	err := artifacts.Publish(modelDir, func(dir string) error {
		// Only part of the set gets written.
		return artifacts.SaveManifest(filepath.Join(dir, artifacts.ManifestFile), manifest)
	})
	if err == nil {
		t.Fatal("expected publish of incomplete bundle to fail")
	}

	if _, err := artifacts.Load(modelDir); err != nil {
		t.Fatalf("previous bundle no longer loads: %v", err)
	}
}

func TestPublishFailureDoesNotCreateBundle(t *testing.T) {
	modelDir := t.TempDir()
	wantErr := errors.New("training exploded")
	err := artifacts.Publish(modelDir, func(string) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want writer error", err)
	}
	if _, err := artifacts.Load(modelDir); !errors.Is(err, services.ErrModelNotTrained) {
		t.Fatalf("got %v, want ErrModelNotTrained", err)
	}
}

func TestLoadRejectsWidthDisagreement(t *testing.T) {
	modelDir := t.TempDir()
	dir := filepath.Join(modelDir, "current")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Manifest of 8 columns, scaler fitted on 3.
	if err := writeNetwork(t, dir, 8); err != nil {
		t.Fatal(err)
	}
	if err := artifacts.SaveManifest(filepath.Join(dir, artifacts.ManifestFile),
		[]string{"a", "b", "c", "d", "e", "f", "g", "h"}); err != nil {
		t.Fatal(err)
	}
	s, err := scaler.Fit([][]float64{{1, 2, 3}, {4, 5, 6}}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(filepath.Join(dir, artifacts.ScalerFile)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, artifacts.MetricsFile), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := artifacts.Load(modelDir); !errors.Is(err, services.ErrFeatureMismatch) {
		t.Fatalf("got %v, want ErrFeatureMismatch", err)
	}
}

func writeBundle(t *testing.T, dir string, manifest []string) error {
	t.Helper()
	if err := writeNetwork(t, dir, len(manifest)); err != nil {
		return err
	}
	rows := make([][]float64, 4)
	for i := range rows {
		row := make([]float64, len(manifest))
		for j := range row {
			row[j] = float64(i + j)
		}
		rows[i] = row
	}
	s, err := scaler.Fit(rows, manifest)
	if err != nil {
		return err
	}
	if err := s.Save(filepath.Join(dir, artifacts.ScalerFile)); err != nil {
		return err
	}
	if err := artifacts.SaveManifest(filepath.Join(dir, artifacts.ManifestFile), manifest); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, artifacts.MetricsFile), []byte(`{"accuracy":1}`), 0o644)
}

func writeNetwork(t *testing.T, dir string, width int) error {
	t.Helper()
	n, err := convnet.New(convnet.QuickConfig(), width, 42)
	if err != nil {
		return err
	}
	return n.Save(filepath.Join(dir, artifacts.WeightsFile))
}

// Package artifacts manages the persisted model bundle: classifier weights,
// fitted scaler, and the feature-column manifest, plus the metrics report
// from the producing run. The three core artifacts are published as a set
// with a directory swap so readers never observe a partial bundle.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"veritext/internal/convnet"
	"veritext/internal/scaler"
	"veritext/internal/services"
)

const (
	WeightsFile  = "detector.weights"
	ScalerFile   = "scaler.json"
	ManifestFile = "feature_columns.json"
	MetricsFile  = "metrics.json"

	currentDir  = "current"
	publishLock = ".publish.lock"
)

// Bundle is a loaded, mutually consistent model set.
type Bundle struct {
	Network  *convnet.Network
	Scaler   *scaler.Scaler
	Manifest []string
}

// Publish writes a complete bundle into a staging directory under modelDir
// and swaps it into place only after every file has been written. A file
// lock serializes concurrent publishers.
func Publish(modelDir string, write func(stagingDir string) error) error {
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	lock := flock.New(filepath.Join(modelDir, publishLock))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire publish lock: %w", err)
	}
	if !locked {
		return services.Wrap(services.ErrTraining, "artifacts", "publish", "another publish is in progress", nil)
	}
	defer lock.Unlock() //nolint:errcheck

	staging := filepath.Join(modelDir, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging) //nolint:errcheck

	if err := write(staging); err != nil {
		return err
	}
	for _, name := range []string{WeightsFile, ScalerFile, ManifestFile, MetricsFile} {
		if _, err := os.Stat(filepath.Join(staging, name)); err != nil {
			return services.Wrap(services.ErrTraining, "artifacts", "publish",
				fmt.Sprintf("staging bundle incomplete, missing %s", name), err)
		}
	}

	target := filepath.Join(modelDir, currentDir)
	old := target + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("clear previous bundle: %w", err)
	}
	if _, err := os.Stat(target); err == nil {
		if err := os.Rename(target, old); err != nil {
			return fmt.Errorf("retire current bundle: %w", err)
		}
	}
	if err := os.Rename(staging, target); err != nil {
		return fmt.Errorf("publish bundle: %w", err)
	}
	return os.RemoveAll(old)
}

// Load reads the current bundle and checks that the three artifacts agree
// on the feature-vector width. Any missing artifact yields ModelNotTrained.
func Load(modelDir string) (*Bundle, error) {
	dir := filepath.Join(modelDir, currentDir)
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, notTrained("feature manifest", err)
	}
	sc, err := scaler.Load(filepath.Join(dir, ScalerFile))
	if err != nil {
		return nil, notTrained("scaler", err)
	}
	net, err := convnet.Load(filepath.Join(dir, WeightsFile))
	if err != nil {
		return nil, notTrained("classifier weights", err)
	}

	if len(sc.Mean) != len(manifest) || net.InputDim() != len(manifest) {
		return nil, services.Wrap(services.ErrFeatureMismatch, "artifacts", "load",
			fmt.Sprintf("bundle width disagreement: manifest %d, scaler %d, network %d",
				len(manifest), len(sc.Mean), net.InputDim()), nil)
	}
	return &Bundle{Network: net, Scaler: sc, Manifest: manifest}, nil
}

// MetricsPath returns the location of the current bundle's metrics report.
func MetricsPath(modelDir string) string {
	return filepath.Join(modelDir, currentDir, MetricsFile)
}

// SaveManifest writes the ordered feature-column list as JSON.
func SaveManifest(path string, manifest []string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by SaveManifest.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest []string
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(manifest) == 0 {
		return nil, fmt.Errorf("manifest is empty")
	}
	return manifest, nil
}

func notTrained(what string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrModelNotTrained, "artifacts", "load", what+" not found", err)
	}
	return services.Wrap(services.ErrModelNotTrained, "artifacts", "load", "cannot load "+what, err)
}

package detector_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"veritext/internal/artifacts"
	"veritext/internal/config"
	"veritext/internal/convnet"
	"veritext/internal/detector"
	"veritext/internal/features"
	"veritext/internal/scaler"
	"veritext/internal/services"
	"veritext/internal/testsupport"
)

const sampleText = "The committee reviewed the proposal on Thursday afternoon and, after a short debate, agreed to fund the pilot program for another year."

func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.95, detector.ConfidenceHigh},
		{0.9, detector.ConfidenceHigh},
		{0.89, detector.ConfidenceMedium},
		{0.75, detector.ConfidenceMedium},
		{0.7, detector.ConfidenceMedium},
		{0.69, detector.ConfidenceLow},
		{0.55, detector.ConfidenceLow},
		{0.5, detector.ConfidenceLow},
	}
	for _, tc := range cases {
		if got := detector.Band(tc.score); got != tc.want {
			t.Errorf("Band(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestDetectWithoutModelFailsFast(t *testing.T) {
	svc := detector.New(testConfig(t), nil)
	if svc.IsReady() {
		t.Fatal("service ready without a bundle")
	}
	if h := svc.Health(); h.Ready {
		t.Fatal("health reports ready without a bundle")
	}
	_, err := svc.Detect(context.Background(), sampleText)
	if !errors.Is(err, services.ErrModelNotTrained) {
		t.Fatalf("got %v, want ErrModelNotTrained", err)
	}
}

func TestDetectReturnsConsistentResult(t *testing.T) {
	cfg := testConfig(t)
	publishBundle(t, cfg)
	svc := detector.New(cfg, nil)
	if !svc.IsReady() {
		t.Fatal("service not ready after publish")
	}

	res, err := svc.Detect(context.Background(), sampleText)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.AIProbability < 0 || res.AIProbability > 1 {
		t.Errorf("ai probability %v outside [0,1]", res.AIProbability)
	}
	if sum := res.AIProbability + res.HumanProbability; sum < 0.999 || sum > 1.001 {
		t.Errorf("probabilities sum to %v", sum)
	}
	wantClass := "human"
	if res.AIProbability >= 0.5 {
		wantClass = "ai"
	}
	if res.Classification != wantClass {
		t.Errorf("classification %q disagrees with probability %v", res.Classification, res.AIProbability)
	}
	if res.ConfidenceScore < 0.5 || res.ConfidenceScore > 1 {
		t.Errorf("confidence score %v outside [0.5,1]", res.ConfidenceScore)
	}
	if res.WordCount == 0 || res.TextLength == 0 {
		t.Errorf("missing text stats: %+v", res)
	}

	// Same text, same verdict.
	again, err := svc.Detect(context.Background(), sampleText)
	if err != nil {
		t.Fatalf("repeat Detect: %v", err)
	}
	if again.AIProbability != res.AIProbability {
		t.Errorf("repeated detection drifted: %v != %v", again.AIProbability, res.AIProbability)
	}
}

func TestDetectRejectsShortText(t *testing.T) {
	cfg := testConfig(t)
	publishBundle(t, cfg)
	svc := detector.New(cfg, nil)

	_, err := svc.Detect(context.Background(), "   short   ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestDetectConcurrent(t *testing.T) {
	cfg := testConfig(t)
	publishBundle(t, cfg)
	svc := detector.New(cfg, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Detect(context.Background(), sampleText); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Detect: %v", err)
	}
}

func TestReloadPicksUpNewBundle(t *testing.T) {
	cfg := testConfig(t)
	svc := detector.New(cfg, nil)
	if svc.IsReady() {
		t.Fatal("ready before any publish")
	}

	publishBundle(t, cfg)
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !svc.IsReady() {
		t.Fatal("not ready after reload")
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

// publishBundle trains nothing: it fits a scaler on two extracted vectors
// and pairs it with a freshly initialized network over the real feature
// manifest, which is enough for the service's plumbing.
func publishBundle(t *testing.T, cfg *config.Config) {
	t.Helper()
	manifest := features.Extract(sampleText).Names()

	rowA, err := features.Reindex(features.Extract(sampleText), manifest)
	if err != nil {
		t.Fatal(err)
	}
	rowB, err := features.Reindex(features.Extract("Dogs bark. Cats nap all day, mostly in sunbeams, and nobody minds at all."), manifest)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := scaler.Fit([][]float64{rowA, rowB}, manifest)
	if err != nil {
		t.Fatal(err)
	}
	net, err := convnet.New(convnet.QuickConfig(), len(manifest), 42)
	if err != nil {
		t.Fatal(err)
	}

	err = artifacts.Publish(cfg.Paths.ModelDir, func(dir string) error {
		if err := net.Save(filepath.Join(dir, artifacts.WeightsFile)); err != nil {
			return err
		}
		if err := sc.Save(filepath.Join(dir, artifacts.ScalerFile)); err != nil {
			return err
		}
		if err := artifacts.SaveManifest(filepath.Join(dir, artifacts.ManifestFile), manifest); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, artifacts.MetricsFile), []byte(`{"accuracy":1}`), 0o644)
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
}

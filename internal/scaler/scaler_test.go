package scaler_test

import (
	"math"
	"path/filepath"
	"testing"

	"veritext/internal/scaler"
)

func TestFitTransformStandardizes(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}
	s, err := scaler.Fit(rows, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	scaled, err := s.TransformAll(rows)
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	for j := 0; j < 2; j++ {
		var sum, sumSq float64
		for _, row := range scaled {
			sum += row[j]
			sumSq += row[j] * row[j]
		}
		mean := sum / float64(len(scaled))
		variance := sumSq/float64(len(scaled)) - mean*mean
		if math.Abs(mean) > 1e-9 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(variance-1) > 1e-9 {
			t.Errorf("column %d variance = %v, want 1", j, variance)
		}
	}
}

func TestFitZeroVarianceColumn(t *testing.T) {
	rows := [][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	}
	s, err := scaler.Fit(rows, []string{"constant", "varying"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if s.Scale[0] != 1 {
		t.Errorf("constant column scale = %v, want 1", s.Scale[0])
	}
	out, err := s.Transform([]float64{5, 2})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out[0] != 0 {
		t.Errorf("constant column transformed to %v, want 0", out[0])
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		t.Errorf("transform produced non-finite value %v", out[0])
	}
}

func TestTransformDoesNotMutateState(t *testing.T) {
	train := [][]float64{{1}, {3}}
	s, err := scaler.Fit(train, []string{"x"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	before := s.Mean[0]
	for i := 0; i < 10; i++ {
		if _, err := s.Transform([]float64{100}); err != nil {
			t.Fatalf("Transform: %v", err)
		}
	}
	if s.Mean[0] != before {
		t.Errorf("mean changed from %v to %v after Transform calls", before, s.Mean[0])
	}
}

func TestTransformRejectsWidthMismatch(t *testing.T) {
	s, err := scaler.Fit([][]float64{{1, 2}}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Fatal("expected error for mismatched row width")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rows := [][]float64{
		{1.5, -2},
		{2.5, 4},
	}
	s, err := scaler.Fit(rows, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scaler.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := scaler.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sample := []float64{2, 1}
	want, err := s.Transform(sample)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	got, err := loaded.Transform(sample)
	if err != nil {
		t.Fatalf("Transform after load: %v", err)
	}
	for j := range want {
		if want[j] != got[j] {
			t.Errorf("column %d: got %v after round trip, want %v", j, got[j], want[j])
		}
	}
}

func TestFitRejectsEmptyInput(t *testing.T) {
	if _, err := scaler.Fit(nil, []string{"a"}); err == nil {
		t.Fatal("expected error for empty input")
	}
}

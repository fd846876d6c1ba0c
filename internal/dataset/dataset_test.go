package dataset_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"veritext/internal/dataset"
	"veritext/internal/services"
)

func TestResolveLabelSpellings(t *testing.T) {
	cases := []struct {
		raw  string
		want dataset.Label
	}{
		{"machine", dataset.AI},
		{"Machine", dataset.AI},
		{"MACHINE", dataset.AI},
		{"ai", dataset.AI},
		{"AI", dataset.AI},
		{"human", dataset.Human},
		{"Human", dataset.Human},
		{"HUMAN", dataset.Human},
		{"  human  ", dataset.Human},
	}
	for _, tc := range cases {
		got, ok := dataset.ResolveLabel(tc.raw)
		if !ok {
			t.Errorf("ResolveLabel(%q) not recognized", tc.raw)
			continue
		}
		if got != tc.want {
			t.Errorf("ResolveLabel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
	if _, ok := dataset.ResolveLabel("synthetic"); ok {
		t.Error("ResolveLabel accepted an unknown value")
	}
}

func TestResolveCorpusDropsUnresolvable(t *testing.T) {
	rows := []dataset.RawSample{
		{Text: "one", Label: "human"},
		{Text: "two", Label: "machine"},
		{Text: "three", Label: "mystery"},
	}
	samples, err := dataset.ResolveCorpus(rows, nil)
	if err != nil {
		t.Fatalf("ResolveCorpus: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	for _, s := range samples {
		if s.Text == "three" {
			t.Error("unresolvable row was kept")
		}
	}
}

func TestResolveCorpusInfersTwoValueLabels(t *testing.T) {
	rows := []dataset.RawSample{
		{Text: "a", Label: "generated"},
		{Text: "b", Label: "generated"},
		{Text: "c", Label: "generated"},
		{Text: "d", Label: "authored"},
		{Text: "e", Label: "authored"},
	}
	samples, err := dataset.ResolveCorpus(rows, nil)
	if err != nil {
		t.Fatalf("ResolveCorpus: %v", err)
	}
	for _, s := range samples {
		switch s.Text {
		case "a", "b", "c":
			if s.Label != dataset.AI {
				t.Errorf("sample %q: got %v, want AI (more frequent value)", s.Text, s.Label)
			}
		default:
			if s.Label != dataset.Human {
				t.Errorf("sample %q: got %v, want Human", s.Text, s.Label)
			}
		}
	}
}

func TestResolveCorpusRejectsManyUnknownValues(t *testing.T) {
	rows := []dataset.RawSample{
		{Text: "a", Label: "x"},
		{Text: "b", Label: "y"},
		{Text: "c", Label: "z"},
	}
	if _, err := dataset.ResolveCorpus(rows, nil); err == nil {
		t.Fatal("expected error for three distinct unknown label values")
	}
}

func TestLoadCSVSkipsShortText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.csv")
	content := "text,label\n" +
		"\"This sentence is long enough to pass the admission gate.\",human\n" +
		"\"short\",machine\n" +
		"\"Another sufficiently long sentence written by somebody or something.\",machine\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, skipped, err := dataset.LoadCSV(path, 10)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
	if skipped != 1 {
		t.Errorf("got %d skipped, want 1", skipped)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, _, err := dataset.LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), 10)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPrepareBuildsConsistentMatrix(t *testing.T) {
	samples := makeSamples(t, 20, 20)
	prep, err := dataset.Prepare(samples, nil)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(prep.Manifest) == 0 {
		t.Fatal("empty manifest")
	}
	if len(prep.Matrix) != len(prep.Labels) || len(prep.Matrix) != len(prep.Samples) {
		t.Fatalf("inconsistent lengths: %d rows, %d labels, %d samples",
			len(prep.Matrix), len(prep.Labels), len(prep.Samples))
	}
	for i, row := range prep.Matrix {
		if len(row) != len(prep.Manifest) {
			t.Fatalf("row %d has %d values, manifest has %d", i, len(row), len(prep.Manifest))
		}
	}
	// Manifest must be sorted so artifact diffs are stable.
	for i := 1; i < len(prep.Manifest); i++ {
		if prep.Manifest[i-1] >= prep.Manifest[i] {
			t.Fatalf("manifest not sorted at %d: %q >= %q", i, prep.Manifest[i-1], prep.Manifest[i])
		}
	}
}

func makeSamples(t *testing.T, humans, machines int) []dataset.LabeledSample {
	t.Helper()
	samples := make([]dataset.LabeledSample, 0, humans+machines)
	for i := 0; i < humans; i++ {
		samples = append(samples, dataset.LabeledSample{
			Text:  fmt.Sprintf("I walked to the market on day %d and bought something odd, didn't I? It rained.", i),
			Label: dataset.Human,
		})
	}
	for i := 0; i < machines; i++ {
		samples = append(samples, dataset.LabeledSample{
			Text:  fmt.Sprintf("The market is a location. The market sells goods. The market operates on day %d.", i),
			Label: dataset.AI,
		})
	}
	return samples
}

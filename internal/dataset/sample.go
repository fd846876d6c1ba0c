package dataset

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"veritext/internal/logging"
	"veritext/internal/services"
)

// Label is the binary authorship class.
type Label int

const (
	Human Label = 0
	AI    Label = 1
)

func (l Label) String() string {
	if l == AI {
		return "ai"
	}
	return "human"
}

// LabeledSample pairs a document's text with its resolved label. Samples are
// immutable once loaded.
type LabeledSample struct {
	Text  string
	Label Label
}

// labelTable maps the raw label spellings seen in real corpora onto the
// binary enum. Lookups are case-insensitive after trimming.
var labelTable = map[string]Label{
	"machine": AI,
	"ai":      AI,
	"human":   Human,
}

// ResolveLabel normalizes a raw label string against the known spellings.
func ResolveLabel(raw string) (Label, bool) {
	l, ok := labelTable[strings.ToLower(strings.TrimSpace(raw))]
	return l, ok
}

// ResolveCorpus converts raw rows into labeled samples. Rows whose label
// matches the known table are mapped directly. If no rows match but the
// corpus uses exactly two distinct raw values, the more frequent value is
// treated as AI and the other as Human; the inferred assignment is logged
// at warn level since it is a guess. Rows that still cannot be resolved
// are dropped with a count logged, never defaulted to Human.
func ResolveCorpus(rows []RawSample, logger *slog.Logger) ([]LabeledSample, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	samples := make([]LabeledSample, 0, len(rows))
	unmatched := make([]RawSample, 0)
	for _, row := range rows {
		label, ok := ResolveLabel(row.Label)
		if !ok {
			unmatched = append(unmatched, row)
			continue
		}
		samples = append(samples, LabeledSample{Text: row.Text, Label: label})
	}

	if len(samples) == 0 && len(unmatched) > 0 {
		inferred, err := inferBinaryLabels(unmatched, logger)
		if err != nil {
			return nil, err
		}
		samples = inferred
		unmatched = nil
	}

	if dropped := len(unmatched); dropped > 0 {
		logger.Warn("dropped samples with unresolvable labels",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(samples)))
	}
	if len(samples) == 0 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "resolve", "no labeled samples after resolution", nil)
	}
	return samples, nil
}

func inferBinaryLabels(rows []RawSample, logger *slog.Logger) ([]LabeledSample, error) {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[strings.ToLower(strings.TrimSpace(row.Label))]++
	}
	if len(counts) != 2 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "resolve",
			fmt.Sprintf("cannot infer labels: %d distinct unrecognized values, need exactly 2", len(counts)), nil)
	}

	values := make([]string, 0, 2)
	for v := range counts {
		values = append(values, v)
	}
	// More frequent value maps to AI; ties break lexicographically.
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	assignment := map[string]Label{values[0]: AI, values[1]: Human}
	logger.Warn("label values unrecognized, inferred assignment by frequency",
		slog.String("ai_value", values[0]),
		slog.String("human_value", values[1]))

	samples := make([]LabeledSample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, LabeledSample{
			Text:  row.Text,
			Label: assignment[strings.ToLower(strings.TrimSpace(row.Label))],
		})
	}
	return samples, nil
}

// CountByLabel reports how many samples carry each label.
func CountByLabel(samples []LabeledSample) (human, ai int) {
	for _, s := range samples {
		if s.Label == AI {
			ai++
		} else {
			human++
		}
	}
	return human, ai
}

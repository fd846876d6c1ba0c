package dataset

import (
	"log/slog"
	"math"
	"sort"

	"veritext/internal/features"
	"veritext/internal/logging"
	"veritext/internal/services"
)

// Prepared is the output of corpus preparation: one feature row per
// surviving sample, ordered by the column manifest.
type Prepared struct {
	Samples  []LabeledSample
	Matrix   [][]float64
	Labels   []float64
	Manifest []string
}

// maxMissingRate is the pruning threshold for feature columns. A column
// absent or non-finite in more than this share of the corpus carries too
// little signal to keep.
const maxMissingRate = 0.5

// Prepare extracts a feature vector per sample, prunes unreliable columns,
// and projects every sample onto the resulting manifest. Pruning statistics
// are computed once over the full corpus, before any split, so all
// partitions share the same column set. Rows with non-finite values in
// retained columns are dropped rather than patched.
func Prepare(samples []LabeledSample, logger *slog.Logger) (*Prepared, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(samples) == 0 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "prepare", "empty corpus", nil)
	}

	vectors := make([]features.Vector, len(samples))
	for i, s := range samples {
		vectors[i] = features.Extract(s.Text)
	}

	manifest := pruneColumns(vectors, logger)
	if len(manifest) == 0 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "prepare", "no feature columns survived pruning", nil)
	}

	prep := &Prepared{
		Samples:  make([]LabeledSample, 0, len(samples)),
		Matrix:   make([][]float64, 0, len(samples)),
		Labels:   make([]float64, 0, len(samples)),
		Manifest: manifest,
	}
	droppedRows := 0
	for i, vec := range vectors {
		if !finiteOn(vec, manifest) {
			droppedRows++
			continue
		}
		row, err := features.Reindex(vec, manifest)
		if err != nil {
			return nil, err
		}
		prep.Samples = append(prep.Samples, samples[i])
		prep.Matrix = append(prep.Matrix, row)
		prep.Labels = append(prep.Labels, float64(samples[i].Label))
	}
	if droppedRows > 0 {
		logger.Warn("dropped rows with non-finite feature values",
			slog.Int("dropped", droppedRows),
			slog.Int("kept", len(prep.Matrix)))
	}
	if len(prep.Matrix) == 0 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "prepare", "no rows survived preparation", nil)
	}

	logger.Info("corpus prepared",
		slog.Int("samples", len(prep.Matrix)),
		slog.Int("features", len(manifest)))
	return prep, nil
}

// pruneColumns returns the sorted list of feature names whose missing rate
// across all vectors stays at or below the threshold. A value counts as
// missing when the name is absent from a vector or its value is not finite.
func pruneColumns(vectors []features.Vector, logger *slog.Logger) []string {
	missing := make(map[string]int)
	seen := make(map[string]struct{})
	for _, vec := range vectors {
		for name, val := range vec {
			seen[name] = struct{}{}
			if math.IsNaN(val) || math.IsInf(val, 0) {
				missing[name]++
			}
		}
	}
	total := float64(len(vectors))
	for _, vec := range vectors {
		for name := range seen {
			if _, ok := vec[name]; !ok {
				missing[name]++
			}
		}
	}

	manifest := make([]string, 0, len(seen))
	pruned := 0
	for name := range seen {
		if float64(missing[name])/total > maxMissingRate {
			pruned++
			continue
		}
		manifest = append(manifest, name)
	}
	sort.Strings(manifest)
	if pruned > 0 {
		logger.Info("pruned sparse feature columns",
			slog.Int("pruned", pruned),
			slog.Int("retained", len(manifest)))
	}
	return manifest
}

func finiteOn(vec features.Vector, manifest []string) bool {
	for _, name := range manifest {
		if val, ok := vec[name]; ok && (math.IsNaN(val) || math.IsInf(val, 0)) {
			return false
		}
	}
	return true
}

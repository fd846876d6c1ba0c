package features

import (
	"fmt"
	"math"
	"sort"

	"veritext/internal/services"
)

// Vector maps feature names to scalar values. Only numeric features appear;
// the extractor drops anything non-numeric before returning.
type Vector map[string]float64

// Names returns the feature names in deterministic (sorted) order.
func (v Vector) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reindex projects v onto the ordered manifest: manifest names missing from v
// become 0.0, names in v but not in the manifest are discarded. The returned
// slice always has len(manifest). A degenerate projection — empty manifest,
// or no overlap at all between v and the manifest — is surfaced as a
// feature-mismatch error instead of being silently zero-filled into nonsense.
func Reindex(v Vector, manifest []string) ([]float64, error) {
	if len(manifest) == 0 {
		return nil, services.Wrap(services.ErrFeatureMismatch, "features", "reindex", "empty manifest", nil)
	}

	out := make([]float64, len(manifest))
	matched := 0
	for i, name := range manifest {
		if val, ok := v[name]; ok {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				val = 0
			}
			out[i] = val
			matched++
		}
	}
	if matched == 0 {
		return nil, services.Wrap(services.ErrFeatureMismatch, "features", "reindex",
			fmt.Sprintf("no overlap between %d computed features and %d manifest columns", len(v), len(manifest)), nil)
	}
	return out, nil
}

package dataset

import (
	"math/rand"
	"sort"

	"veritext/internal/services"
)

// Split holds row indices for the three partitions of a prepared corpus.
type Split struct {
	Train []int
	Val   []int
	Test  []int
}

// StratifiedSplit partitions row indices 80/10/10, stratified by label. The
// 20% holdout is split a second time, again per label, into validation and
// test halves. The same seed over the same corpus reproduces the same
// partitions.
func StratifiedSplit(labels []float64, seed int64) (*Split, error) {
	if len(labels) < 10 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "split", "too few samples to split", nil)
	}

	byLabel := make(map[float64][]int)
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}
	keys := make([]float64, 0, len(byLabel))
	for k := range byLabel {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	rng := rand.New(rand.NewSource(seed))
	split := &Split{}
	for _, k := range keys {
		group := byLabel[k]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		trainN := int(float64(len(group)) * 0.8)
		holdout := group[trainN:]
		valN := len(holdout) / 2

		split.Train = append(split.Train, group[:trainN]...)
		split.Val = append(split.Val, holdout[:valN]...)
		split.Test = append(split.Test, holdout[valN:]...)
	}

	sort.Ints(split.Train)
	sort.Ints(split.Val)
	sort.Ints(split.Test)
	return split, nil
}

// Gather selects the rows and labels at the given indices.
func Gather(matrix [][]float64, labels []float64, idx []int) ([][]float64, []float64) {
	rows := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		rows[i] = matrix[j]
		y[i] = labels[j]
	}
	return rows, y
}

// SubsamplePerLabel retains at most n indices per label, chosen with the
// seeded generator. Used by the quick-test training mode.
func SubsamplePerLabel(samples []LabeledSample, n int, seed int64) []LabeledSample {
	if n <= 0 {
		return samples
	}
	byLabel := make(map[Label][]int)
	for i, s := range samples {
		byLabel[s.Label] = append(byLabel[s.Label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	keep := make([]int, 0, 2*n)
	for _, label := range []Label{Human, AI} {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		if len(group) > n {
			group = group[:n]
		}
		keep = append(keep, group...)
	}
	sort.Ints(keep)

	out := make([]LabeledSample, 0, len(keep))
	for _, i := range keep {
		out = append(out, samples[i])
	}
	return out
}

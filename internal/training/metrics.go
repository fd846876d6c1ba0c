package training

import (
	"sort"

	"veritext/internal/services"
)

// ConfusionMatrix counts test-set outcomes with AI as the positive class.
type ConfusionMatrix struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// Report is the evaluation summary persisted alongside the model bundle.
type Report struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	ROCAUC    float64         `json:"roc_auc"`
	Confusion ConfusionMatrix `json:"confusion_matrix"`

	TrainSamples int `json:"train_samples"`
	ValSamples   int `json:"val_samples"`
	TestSamples  int `json:"test_samples"`
	Features     int `json:"features"`
	EpochsRun    int `json:"epochs_run"`
	BestEpoch    int `json:"best_epoch"`
}

// Evaluate scores predicted probabilities against true labels at the 0.5
// threshold, with AI (label 1) as the positive class.
func Evaluate(probs, labels []float64) (*Report, error) {
	if len(probs) == 0 || len(probs) != len(labels) {
		return nil, services.Wrap(services.ErrTraining, "training", "evaluate", "predictions and labels empty or misaligned", nil)
	}

	r := &Report{TestSamples: len(probs)}
	for i, p := range probs {
		positive := labels[i] == 1
		predicted := p >= 0.5
		switch {
		case positive && predicted:
			r.Confusion.TruePositive++
		case positive && !predicted:
			r.Confusion.FalseNegative++
		case !positive && predicted:
			r.Confusion.FalsePositive++
		default:
			r.Confusion.TrueNegative++
		}
	}

	cm := r.Confusion
	total := float64(len(probs))
	r.Accuracy = float64(cm.TruePositive+cm.TrueNegative) / total
	if cm.TruePositive+cm.FalsePositive > 0 {
		r.Precision = float64(cm.TruePositive) / float64(cm.TruePositive+cm.FalsePositive)
	}
	if cm.TruePositive+cm.FalseNegative > 0 {
		r.Recall = float64(cm.TruePositive) / float64(cm.TruePositive+cm.FalseNegative)
	}
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	r.ROCAUC = rocAUC(probs, labels)
	return r, nil
}

// rocAUC computes the area under the ROC curve via the rank-sum identity,
// with tied scores receiving their average rank. A degenerate test set with
// a single class scores 0.5.
func rocAUC(probs, labels []float64) float64 {
	n := len(probs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var nPos, nNeg int
	var rankSum float64
	for i, l := range labels {
		if l == 1 {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	return (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
}

package training_test

import (
	"math"
	"testing"

	"veritext/internal/training"
)

func TestEvaluatePerfectClassifier(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.1, 0.2}
	labels := []float64{1, 1, 0, 0}
	r, err := training.Evaluate(probs, labels)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r.Accuracy != 1 || r.Precision != 1 || r.Recall != 1 || r.F1 != 1 {
		t.Fatalf("perfect classifier scored %+v", r)
	}
	if r.ROCAUC != 1 {
		t.Fatalf("ROC AUC = %v, want 1", r.ROCAUC)
	}
	if r.Confusion.TruePositive != 2 || r.Confusion.TrueNegative != 2 {
		t.Fatalf("confusion matrix %+v", r.Confusion)
	}
}

func TestEvaluateInvertedClassifier(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.9, 0.8}
	labels := []float64{1, 1, 0, 0}
	r, err := training.Evaluate(probs, labels)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r.Accuracy != 0 {
		t.Fatalf("accuracy = %v, want 0", r.Accuracy)
	}
	if r.ROCAUC != 0 {
		t.Fatalf("ROC AUC = %v, want 0", r.ROCAUC)
	}
}

func TestEvaluateTiedScores(t *testing.T) {
	probs := []float64{0.5, 0.5, 0.5, 0.5}
	labels := []float64{1, 1, 0, 0}
	r, err := training.Evaluate(probs, labels)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// All-tied scores carry no ranking information.
	if math.Abs(r.ROCAUC-0.5) > 1e-12 {
		t.Fatalf("ROC AUC = %v, want 0.5", r.ROCAUC)
	}
}

func TestEvaluateSingleClass(t *testing.T) {
	probs := []float64{0.6, 0.7}
	labels := []float64{1, 1}
	r, err := training.Evaluate(probs, labels)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r.ROCAUC != 0.5 {
		t.Fatalf("degenerate ROC AUC = %v, want 0.5", r.ROCAUC)
	}
	if r.Recall != 1 {
		t.Fatalf("recall = %v, want 1", r.Recall)
	}
}

func TestEvaluateRejectsMisalignedInput(t *testing.T) {
	if _, err := training.Evaluate([]float64{0.5}, []float64{1, 0}); err == nil {
		t.Fatal("expected error for misaligned input")
	}
	if _, err := training.Evaluate(nil, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

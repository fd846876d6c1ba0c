package services_test

import (
	"errors"
	"strings"
	"testing"

	"veritext/internal/services"
)

func TestWrapTagsMarkerAndWrapsCause(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "extract", "pdf", "page 3", base)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "extract: pdf: page 3") {
		t.Fatalf("expected detail in message, got %q", err.Error())
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "detect", "validate", "too short", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestWrapDefaultsToTrainingMarker(t *testing.T) {
	err := services.Wrap(nil, "train", "fit", "", errors.New("nan loss"))
	if !errors.Is(err, services.ErrTraining) {
		t.Fatalf("expected training marker fallback, got %v", err)
	}
}

func TestSafeMessageHidesInternalDetail(t *testing.T) {
	internal := errors.New("panic: index out of range [42]")
	if msg := services.SafeMessage(internal); msg != "internal error" {
		t.Fatalf("expected generic message, got %q", msg)
	}

	tagged := services.Wrap(services.ErrModelNotTrained, "detect", "load", "/secret/path/models", nil)
	msg := services.SafeMessage(tagged)
	if strings.Contains(msg, "/secret/path") {
		t.Fatalf("safe message leaked detail: %q", msg)
	}
	if msg == "internal error" {
		t.Fatalf("expected category-specific message, got %q", msg)
	}
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction error")
	ErrValidation        = errors.New("validation error")
	ErrModelNotTrained   = errors.New("model not trained")
	ErrFeatureMismatch   = errors.New("feature mismatch")
	ErrTraining          = errors.New("training failure")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrTimeout           = errors.New("timeout")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTraining
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// SafeMessage returns a short description of err suitable for external
// callers. Sentinel-tagged errors keep their category label; anything else
// collapses to a generic message so internal detail stays in the logs.
func SafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported document format"
	case errors.Is(err, ErrExtraction):
		return "could not extract text from document"
	case errors.Is(err, ErrValidation):
		return "input failed validation"
	case errors.Is(err, ErrModelNotTrained):
		return "model artifacts are not available; train a model first"
	case errors.Is(err, ErrFeatureMismatch):
		return "feature layout does not match the trained model"
	case errors.Is(err, ErrTimeout):
		return "analysis timed out"
	case errors.Is(err, ErrTraining):
		return "training run failed"
	default:
		return "internal error"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

// Package detector serves the trained classifier: it loads the persisted
// bundle, reproduces the training-time feature transform for new text, and
// returns calibrated probabilities with a confidence band.
package detector

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"veritext/internal/artifacts"
	"veritext/internal/config"
	"veritext/internal/features"
	"veritext/internal/logging"
	"veritext/internal/services"
	"veritext/internal/textextract"
)

// Confidence bands over score = max(p, 1-p).
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	highThreshold   = 0.9
	mediumThreshold = 0.7
)

// Result is the outcome of a single detection.
type Result struct {
	Classification   string  `json:"classification"`
	AIProbability    float64 `json:"ai_probability"`
	HumanProbability float64 `json:"human_probability"`
	Confidence       string  `json:"confidence"`
	ConfidenceScore  float64 `json:"confidence_score"`
	TextLength       int     `json:"text_length"`
	WordCount        int     `json:"word_count"`
}

// Health summarizes the service's readiness for status surfaces.
type Health struct {
	Ready    bool   `json:"ready"`
	Features int    `json:"features"`
	Detail   string `json:"detail,omitempty"`
}

// Service runs inference against the current model bundle. Detection is
// safe for concurrent use; Reload swaps the bundle atomically.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger

	mu      sync.RWMutex
	bundle  *artifacts.Bundle
	loadErr error
}

// New builds the service and attempts an initial bundle load. A missing
// bundle is not fatal: the service starts not-ready and every detection
// fails fast until a training run publishes artifacts and Reload succeeds.
func New(cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{cfg: cfg, logger: logger}
	if err := s.Reload(); err != nil {
		logger.Warn("detector starting without a model", logging.Error(err))
	}
	return s
}

// Reload re-reads the bundle from the model directory.
func (s *Service) Reload() error {
	bundle, err := artifacts.Load(s.cfg.Paths.ModelDir)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.bundle = nil
		s.loadErr = err
		return err
	}
	s.bundle = bundle
	s.loadErr = nil
	s.logger.Info("model bundle loaded",
		slog.Int("features", len(bundle.Manifest)))
	return nil
}

// IsReady reports whether a bundle is loaded.
func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle != nil
}

// Health reports readiness plus the loaded feature width.
func (s *Service) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := Health{Ready: s.bundle != nil}
	if s.bundle != nil {
		h.Features = len(s.bundle.Manifest)
	} else if s.loadErr != nil {
		h.Detail = services.SafeMessage(s.loadErr)
	}
	return h
}

// Detect classifies raw text. The configured detection timeout bounds the
// whole pipeline.
func (s *Service) Detect(ctx context.Context, text string) (*Result, error) {
	s.mu.RLock()
	bundle := s.bundle
	s.mu.RUnlock()
	if bundle == nil {
		return nil, services.Wrap(services.ErrModelNotTrained, "detector", "detect", "no model bundle loaded", nil)
	}

	text = strings.TrimSpace(text)
	if err := textextract.ValidateText(text, s.cfg.Detection.MinTextLength); err != nil {
		return nil, err
	}

	if timeout := s.cfg.Detection.DetectTimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	type outcome struct {
		result *Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := s.classify(bundle, text)
		done <- outcome{r, err}
	}()

	select {
	case <-ctx.Done():
		return nil, services.Wrap(services.ErrTimeout, "detector", "detect", "detection timed out", ctx.Err())
	case o := <-done:
		return o.result, o.err
	}
}

// DetectFile extracts text from a document and classifies it. Extraction is
// bounded by the configured extract timeout; classification then runs under
// the detect timeout.
func (s *Service) DetectFile(ctx context.Context, path string) (*Result, error) {
	extractCtx := ctx
	if timeout := s.cfg.Detection.ExtractTimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := textextract.Extract(path)
		done <- outcome{text, err}
	}()

	select {
	case <-extractCtx.Done():
		return nil, services.Wrap(services.ErrTimeout, "detector", "extract", "text extraction timed out", extractCtx.Err())
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		return s.Detect(ctx, o.text)
	}
}

func (s *Service) classify(bundle *artifacts.Bundle, text string) (*Result, error) {
	vec := features.Extract(text)
	row, err := features.Reindex(vec, bundle.Manifest)
	if err != nil {
		return nil, err
	}
	scaled, err := bundle.Scaler.Transform(row)
	if err != nil {
		return nil, err
	}
	p, err := bundle.Network.Predict(scaled)
	if err != nil {
		return nil, err
	}

	result := &Result{
		AIProbability:    p,
		HumanProbability: 1 - p,
		TextLength:       utf8.RuneCountInString(text),
		WordCount:        len(strings.Fields(text)),
	}
	if p >= 0.5 {
		result.Classification = "ai"
		result.ConfidenceScore = p
	} else {
		result.Classification = "human"
		result.ConfidenceScore = 1 - p
	}
	result.Confidence = Band(result.ConfidenceScore)
	return result, nil
}

// Band maps a confidence score onto its reporting band.
func Band(score float64) string {
	switch {
	case score >= highThreshold:
		return ConfidenceHigh
	case score >= mediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ModelDir == "" {
		return errors.New("paths.model_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateTraining() error {
	if c.Training.Epochs <= 0 {
		return errors.New("training.epochs must be positive")
	}
	if c.Training.BatchSize <= 0 {
		return errors.New("training.batch_size must be positive")
	}
	if c.Training.LearningRate <= 0 {
		return errors.New("training.learning_rate must be positive")
	}
	if c.Training.PlateauFactor <= 0 || c.Training.PlateauFactor >= 1 {
		return fmt.Errorf("training.plateau_factor must be in (0, 1), got %g", c.Training.PlateauFactor)
	}
	if c.Training.EarlyStopPatience < 1 {
		return errors.New("training.early_stop_patience must be at least 1")
	}
	if c.Training.PlateauPatience < 1 {
		return errors.New("training.plateau_patience must be at least 1")
	}
	return nil
}

func (c *Config) validateDetection() error {
	if c.Detection.MinTextLength < 1 {
		return errors.New("detection.min_text_length must be at least 1")
	}
	if c.Detection.DetectTimeoutSeconds <= 0 {
		return errors.New("detection.detect_timeout_seconds must be positive")
	}
	if c.Detection.ExtractTimeoutSeconds <= 0 {
		return errors.New("detection.extract_timeout_seconds must be positive")
	}
	return nil
}

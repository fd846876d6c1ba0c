package scaler

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"

	"veritext/internal/services"
)

// Scaler standardizes feature vectors to zero mean and unit variance using
// statistics fitted on the training partition only. Once fitted the state is
// immutable; Transform never consults the sample being transformed.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Fit computes per-feature mean and standard deviation from rows. Columns
// names the features in row order and is stored for integrity checks at load
// time. Features with zero variance get scale 1 so transformed values stay
// finite.
func Fit(rows [][]float64, columns []string) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, services.Wrap(services.ErrTraining, "scaler", "fit", "no rows", nil)
	}
	width := len(columns)
	for i, row := range rows {
		if len(row) != width {
			return nil, services.Wrap(services.ErrTraining, "scaler", "fit",
				fmt.Sprintf("row %d has %d values, expected %d", i, len(row), width), nil)
		}
	}

	s := &Scaler{
		Columns: append([]string{}, columns...),
		Mean:    make([]float64, width),
		Scale:   make([]float64, width),
	}

	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		s.Mean[j] = stat.Mean(col, nil)
		sd := popStdDev(col, s.Mean[j])
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		s.Scale[j] = sd
	}
	return s, nil
}

// Transform standardizes a single row using the fitted state. The input is
// not modified.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, services.Wrap(services.ErrFeatureMismatch, "scaler", "transform",
			fmt.Sprintf("row has %d values, scaler fitted on %d", len(row), len(s.Mean)), nil)
	}
	out := make([]float64, len(row))
	for j, val := range row {
		out[j] = (val - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

// TransformAll standardizes every row, returning a new matrix.
func (s *Scaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// Save writes the fitted state as JSON.
func (s *Scaler) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scaler: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scaler: %w", err)
	}
	return nil
}

// Load reads a previously saved state and checks its internal consistency.
func Load(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scaler: %w", err)
	}
	if len(s.Mean) != len(s.Scale) || len(s.Mean) != len(s.Columns) {
		return nil, services.Wrap(services.ErrFeatureMismatch, "scaler", "load",
			fmt.Sprintf("inconsistent state: %d columns, %d means, %d scales",
				len(s.Columns), len(s.Mean), len(s.Scale)), nil)
	}
	return &s, nil
}

func popStdDev(x []float64, mean float64) float64 {
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)))
}

package dataset

import (
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"veritext/internal/services"
	"veritext/internal/textextract"
)

// RawSample is one corpus row as it appears on disk, before label
// resolution.
type RawSample struct {
	Text  string `csv:"text"`
	Label string `csv:"label"`
}

// LoadCSV reads a labeled corpus from a CSV file with text and label
// columns. Rows whose text fails the minimum-length gate are skipped; the
// same gate runs again at inference time so the two paths admit identical
// inputs.
func LoadCSV(path string, minTextLength int) ([]RawSample, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrNotFound, "dataset", "load", "open corpus", err)
	}
	defer file.Close() //nolint:errcheck

	var rows []RawSample
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "dataset", "load", "parse corpus csv", err)
	}

	kept := make([]RawSample, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		row.Text = strings.TrimSpace(row.Text)
		if err := textextract.ValidateText(row.Text, minTextLength); err != nil {
			skipped++
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return nil, skipped, services.Wrap(services.ErrValidation, "dataset", "load", "corpus contains no admissible rows", nil)
	}
	return kept, skipped, nil
}

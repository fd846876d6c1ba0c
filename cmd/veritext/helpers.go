package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// summarizeMetrics pulls the headline numbers out of a stored metrics
// report for list views.
func summarizeMetrics(raw string) string {
	if raw == "" {
		return ""
	}
	var m struct {
		Accuracy float64 `json:"accuracy"`
		ROCAUC   float64 `json:"roc_auc"`
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ""
	}
	return fmt.Sprintf("acc %.3f, auc %.3f", m.Accuracy, m.ROCAUC)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package testsupport

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"testing"
)

// WriteCorpus builds a labeled CSV at path with loosely human-like varied
// prose and flat, repetitive machine-like prose, one row per sample.
func WriteCorpus(t testing.TB, path string, humans, machines int) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create corpus: %v", err)
	}
	defer file.Close() //nolint:errcheck

	w := csv.NewWriter(file)
	if err := w.Write([]string{"text", "label"}); err != nil {
		t.Fatalf("write header: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	subjects := []string{"the gardener", "an old friend", "my neighbor", "the pilot", "a stranger"}
	verbs := []string{"wandered", "laughed", "stumbled", "hesitated", "shouted"}
	for i := 0; i < humans; i++ {
		text := fmt.Sprintf("Honestly, %s %s near the station yesterday. I couldn't believe it! We'd talked about %d things, hadn't we? It felt strange, but good.",
			subjects[rng.Intn(len(subjects))], verbs[rng.Intn(len(verbs))], rng.Intn(50)+2)
		if err := w.Write([]string{text, "human"}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	for i := 0; i < machines; i++ {
		text := fmt.Sprintf("The station is a location. The station serves passengers. The station has %d platforms. The station operates daily. The station is important.",
			rng.Intn(9)+1)
		if err := w.Write([]string{text, "machine"}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush corpus: %v", err)
	}
}

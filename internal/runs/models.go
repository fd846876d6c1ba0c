package runs

import "time"

// Status represents the lifecycle of a training run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusPreparing  Status = "preparing"
	StatusTraining   Status = "training"
	StatusEvaluating Status = "evaluating"
	StatusPublishing Status = "publishing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether a run can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Run is one training run's registry record. MetricsJSON holds the
// evaluation report of a completed run verbatim, as written to the bundle.
type Run struct {
	ID          string
	CorpusPath  string
	Mode        string // "full" or "quick"
	Seed        int64
	Status      Status
	ErrorDetail string
	MetricsJSON string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

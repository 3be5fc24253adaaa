package cmtharvest

import (
	"context"
	"time"
)

// Outcome classifies how a harvest run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeComplete Outcome = "complete"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
)

// Run is the record of one harvest-and-reconstruct run.
type Run struct {
	ID         string    `json:"id"`
	StartYear  int       `json:"startYear"`
	EndYear    int       `json:"endYear"`
	Outcome    Outcome   `json:"outcome"`
	Pages      int       `json:"pages"`
	Blocks     int       `json:"blocks"`
	Records    int       `json:"records"`
	Warnings   int       `json:"warnings"`
	CorpusHash string    `json:"corpusHash"`
	TablePath  string    `json:"tablePath"`
	Error      string    `json:"error"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if err := (YearRange{Start: r.StartYear, End: r.EndYear}).Validate(); err != nil {
		return err
	}
	switch r.Outcome {
	case OutcomeComplete, OutcomePartial, OutcomeFailed:
	default:
		return Errorf(EINVALID, "run outcome %q not recognized", r.Outcome)
	}
	return nil
}

// RunService represents a service for recording harvest runs.
type RunService interface {
	// CreateRun records a run and the records it produced.
	CreateRun(ctx context.Context, run *Run, ds *Dataset) error

	// FindRunByID retrieves a run by ID.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// FindRecords returns the records of a run in their original order.
	// Returns ENOTFOUND if the run does not exist.
	FindRecords(ctx context.Context, runID string) (*Dataset, error)

	// DeleteRun permanently removes a run and its records.
	// Returns ENOTFOUND if the run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	ID      *string  `json:"id"`
	Outcome *Outcome `json:"outcome"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

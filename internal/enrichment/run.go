package enrichment

import (
	"errors"
	"time"
)

var ErrRunNotFound = errors.New("enrichment run not found")

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Run is the bookkeeping record of one update request.
type Run struct {
	ID         string     `json:"id"`
	PersonID   int64      `json:"personId"`
	Requested  int        `json:"requested"`
	Fetched    int        `json:"fetched"`
	Skipped    int        `json:"skipped"`
	Stored     int        `json:"stored"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

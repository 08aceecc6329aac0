package history

import (
	"time"

	"github.com/google/uuid"
)

// Status mirrors the per-file terminal outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Record is one file operation.
type Record struct {
	ID          int64
	RunID       string
	Source      string
	Destination string
	Action      string
	MediaType   string
	Status      Status
	State       string
	ErrorKind   string
	Message     string
	Checksum    string
	DryRun      bool
	CreatedAt   time.Time
}

// Run summarizes one invocation of the sorter.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Skipped    int
	Failed     int
	DryRun     bool
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ListOptions filters List.
type ListOptions struct {
	Limit  int
	RunID  string
	Status Status
}

package model

import "time"

// RunStatus is the lifecycle status of a recorded pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunRecord is the audit entry written to the run-history store for every
// invocation of the pipeline.
type RunRecord struct {
	ID         string    `json:"id"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	Discovered int `json:"discovered"` // new cases found by discovery
	Done       int `json:"done"`       // cases completed this run
	Errored    int `json:"errored"`    // cases that ended in error this run

	Digest string `json:"digest,omitempty"`
}

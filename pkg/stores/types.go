package stores

import "time"

// RunStatus represents the status of a release run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one release invocation.
type Run struct {
	ID          string     `json:"id"`
	Scope       string     `json:"scope"` // board type, "all", or "package-current"
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

// Artifact represents one release archive produced by a run.
type Artifact struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Variant   string    `json:"variant"`
	Version   string    `json:"version"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

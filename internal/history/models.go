package history

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
	StatusDryRun    Status = "dry_run"
)

// Terminal reports whether no further updates are expected.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// Input is one file of a run, in merge order.
type Input struct {
	Position int
	Path     string
	Language string
	Forced   bool
	Trashed  bool
}

// Run is a journaled batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Output     string
	Status     Status
	// ExitCode is nil when mkvmerge never exited (dry runs, launch failures).
	ExitCode   *int
	Error      string
	DryRun     bool
	InputCount int
	Inputs     []Input
}

// Duration returns the run's wall time, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome closes a run.
type Outcome struct {
	Status   Status
	ExitCode *int
	Error    string
}

package domain

import "time"

type JobStatus string

const (
	StatusUnknown    JobStatus = "unknown"
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusTimedOut   JobStatus = "timed_out"
)

// Terminal reports whether no further transition can happen for this status.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut:
		return true
	default:
		return false
	}
}

// rank orders statuses along the only legal path:
// Queued -> Processing -> terminal. Unknown carries no ordering information.
func (s JobStatus) rank() int {
	switch s {
	case StatusQueued:
		return 1
	case StatusProcessing:
		return 2
	case StatusCompleted, StatusFailed, StatusTimedOut:
		return 3
	default:
		return 0
	}
}

// CanTransition reports whether moving from s to next keeps the job
// monotonic. A terminal status never transitions again.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusUnknown {
		return false
	}
	return next.rank() >= s.rank()
}

// ProgressEvent is emitted by a poll loop whenever the observed status
// of its job changes. Exactly one event with Terminal=true is emitted
// per job.
type ProgressEvent struct {
	JobID    string
	Filename string
	Status   JobStatus
	Attempts int
	Terminal bool
}

// UploadJob is the in-memory state of one submitted upload. It is owned
// exclusively by the poll loop tracking it and dropped once a terminal
// status has been reported.
type UploadJob struct {
	ID           string
	TrackingID   string
	UserID       int64
	ChatID       int64
	Filename     string
	Status       JobStatus
	SubmittedAt  time.Time
	LastPolledAt time.Time
	Attempts     int
}

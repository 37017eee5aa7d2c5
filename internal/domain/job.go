package domain

import "time"

// JobStatus enumerates video job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// VideoJob tracks the lifecycle of a single video generation request.
// Records are mutated only through the job store so status readers always
// observe a consistent snapshot.
type VideoJob struct {
	ID            string
	Status        JobStatus
	Progress      int
	Prompt        string
	RevisedPrompt string
	Resolution    string
	Duration      int
	VideoURL      string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a copy of the job that is safe to hand out to readers.
func (j *VideoJob) Clone() *VideoJob {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}

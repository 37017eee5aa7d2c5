package video

import (
	"context"
	"fmt"
)

// Request is a normalized generation request ready to send to a provider.
type Request struct {
	Prompt     string
	Resolution string
	Duration   int
}

// Submission is the provider's acceptance of a create-job call.
type Submission struct {
	JobID         string
	RevisedPrompt string
}

// State is the provider-side view of a job.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// PollResult carries one status observation for a submitted job.
type PollResult struct {
	State         State
	Progress      int
	VideoURL      string
	RevisedPrompt string
	Reason        string
}

// Generator is the contract a video generation provider fulfills. Neither
// operation retries internally; retry policy belongs to the caller.
type Generator interface {
	Submit(ctx context.Context, req Request) (Submission, error)
	Poll(ctx context.Context, jobID string) (PollResult, error)
}

// ErrorKind classifies provider failures for the caller's retry policy.
type ErrorKind string

const (
	ErrKindAuth           ErrorKind = "auth"
	ErrKindInvalidRequest ErrorKind = "invalid_request"
	ErrKindRateLimited    ErrorKind = "rate_limited"
	ErrKindTransient      ErrorKind = "transient"
	ErrKindUnknown        ErrorKind = "unknown"
)

// Error is a classified provider failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s error (http %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s error: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is expected to resolve on retry.
func (e *Error) Retryable() bool {
	return e.Kind == ErrKindTransient || e.Kind == ErrKindRateLimited
}

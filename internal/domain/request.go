package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultResolution = "1920x1080"
	DefaultDuration   = 5
)

// GenerationRequest carries the user-supplied parameters for a video job.
type GenerationRequest struct {
	Prompt     string
	Resolution string
	Duration   int
}

// Validator checks and normalizes generation requests against the
// configured bounds. It has no side effects.
type Validator struct {
	maxPromptLength int
	minDuration     int
	maxDuration     int
	resolutions     map[string]struct{}
}

// NewValidator builds a validator from the deployment bounds. The supported
// resolution set and the duration window differ between deployments, so both
// come from configuration rather than constants.
func NewValidator(maxPromptLength, minDuration, maxDuration int, resolutions []string) *Validator {
	set := make(map[string]struct{}, len(resolutions))
	for _, res := range resolutions {
		set[strings.TrimSpace(res)] = struct{}{}
	}
	return &Validator{
		maxPromptLength: maxPromptLength,
		minDuration:     minDuration,
		maxDuration:     maxDuration,
		resolutions:     set,
	}
}

// Validate returns the normalized request or a ValidationError. Empty
// resolution and duration fall back to their defaults before the bounds are
// applied.
func (v *Validator) Validate(req GenerationRequest) (GenerationRequest, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return req, &ValidationError{Field: "prompt", Message: "must be at least 1 character"}
	}
	if len(req.Prompt) > v.maxPromptLength {
		return req, &ValidationError{
			Field:   "prompt",
			Message: fmt.Sprintf("must be at most %d characters", v.maxPromptLength),
		}
	}

	req.Resolution = strings.TrimSpace(req.Resolution)
	if req.Resolution == "" {
		req.Resolution = DefaultResolution
	}
	if _, ok := v.resolutions[req.Resolution]; !ok {
		return req, &ValidationError{
			Field:   "resolution",
			Message: fmt.Sprintf("unsupported resolution %q", req.Resolution),
		}
	}

	if req.Duration == 0 {
		req.Duration = DefaultDuration
	}
	if req.Duration < v.minDuration || req.Duration > v.maxDuration {
		return req, &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("must be between %d and %d seconds", v.minDuration, v.maxDuration),
		}
	}

	return req, nil
}

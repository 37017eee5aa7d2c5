package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIVersion = "2024-12-01-preview"

// SoraOptions configures the Azure OpenAI Sora client.
type SoraOptions struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// SoraClient talks to the Azure OpenAI video generations API. It holds no
// job state; every call is a single attempt.
type SoraClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	apiVersion string
}

func NewSoraClient(opts SoraOptions) *SoraClient {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	version := strings.TrimSpace(opts.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}
	return &SoraClient{
		httpClient: client,
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		apiKey:     strings.TrimSpace(opts.APIKey),
		apiVersion: version,
	}
}

// The generations API expects numeric parameters as strings.
type soraCreateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Height    string `json:"height"`
	Width     string `json:"width"`
	NSeconds  string `json:"n_seconds"`
	NVariants string `json:"n_variants"`
}

type soraJob struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Prompt        string `json:"prompt"`
	RevisedPrompt string `json:"revised_prompt"`
	Progress      int    `json:"progress"`
	Outputs       []struct {
		URL string `json:"url"`
	} `json:"outputs"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *SoraClient) Submit(ctx context.Context, req Request) (Submission, error) {
	width, height := parseResolution(req.Resolution)
	payload := soraCreateRequest{
		Model:     "sora",
		Prompt:    req.Prompt,
		Height:    strconv.Itoa(height),
		Width:     strconv.Itoa(width),
		NSeconds:  strconv.Itoa(req.Duration),
		NVariants: "1",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Submission{}, err
	}

	job, err := c.do(ctx, http.MethodPost, c.jobsURL(""), bytes.NewReader(body))
	if err != nil {
		return Submission{}, err
	}
	if job.ID == "" {
		return Submission{}, &Error{Kind: ErrKindUnknown, Message: "no job id returned from API"}
	}
	return Submission{JobID: job.ID, RevisedPrompt: job.RevisedPrompt}, nil
}

func (c *SoraClient) Poll(ctx context.Context, jobID string) (PollResult, error) {
	job, err := c.do(ctx, http.MethodGet, c.jobsURL(jobID), nil)
	if err != nil {
		return PollResult{}, err
	}

	switch strings.ToLower(job.Status) {
	case "pending", "queued", "preprocessing":
		return PollResult{State: StateQueued}, nil
	case "running", "processing":
		return PollResult{State: StateRunning, Progress: job.Progress}, nil
	case "succeeded":
		if len(job.Outputs) == 0 || job.Outputs[0].URL == "" {
			return PollResult{State: StateFailed, Reason: "no outputs in completed job"}, nil
		}
		revised := job.RevisedPrompt
		if revised == "" {
			revised = job.Prompt
		}
		return PollResult{
			State:         StateSucceeded,
			Progress:      100,
			VideoURL:      job.Outputs[0].URL,
			RevisedPrompt: revised,
		}, nil
	case "failed":
		reason := job.Error.Message
		if reason == "" {
			reason = "Job failed"
		}
		return PollResult{State: StateFailed, Reason: reason}, nil
	default:
		return PollResult{}, &Error{Kind: ErrKindUnknown, Message: fmt.Sprintf("unknown job status %q", job.Status)}
	}
}

func (c *SoraClient) jobsURL(jobID string) string {
	u := c.endpoint + "/openai/v1/video/generations/jobs"
	if jobID != "" {
		u += "/" + url.PathEscape(jobID)
	}
	return u + "?api-version=" + url.QueryEscape(c.apiVersion)
}

func (c *SoraClient) do(ctx context.Context, method, endpoint string, body io.Reader) (*soraJob, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrKindTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	var job soraJob
	decodeErr := json.NewDecoder(resp.Body).Decode(&job)
	if resp.StatusCode >= http.StatusBadRequest {
		message := job.Error.Message
		if message == "" {
			message = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return nil, &Error{Kind: classifyStatus(resp.StatusCode), StatusCode: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return nil, &Error{Kind: ErrKindUnknown, Message: "malformed provider response: " + decodeErr.Error()}
	}
	return &job, nil
}

func classifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrKindAuth
	case code == http.StatusTooManyRequests:
		return ErrKindRateLimited
	case code == http.StatusBadRequest || code == http.StatusNotFound || code == http.StatusUnprocessableEntity:
		return ErrKindInvalidRequest
	case code == http.StatusRequestTimeout || code >= http.StatusInternalServerError:
		return ErrKindTransient
	default:
		return ErrKindUnknown
	}
}

func parseResolution(resolution string) (width, height int) {
	parts := strings.SplitN(resolution, "x", 2)
	if len(parts) != 2 {
		return 1920, 1080
	}
	w, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, herr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return 1920, 1080
	}
	return w, h
}

var _ Generator = (*SoraClient)(nil)

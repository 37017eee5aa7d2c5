package video

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSoraSubmitSendsExpectedPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/openai/v1/video/generations/jobs" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != "2024-12-01-preview" {
			t.Fatalf("unexpected api-version: %s", got)
		}
		if got := r.Header.Get("Api-key"); got != "test-key" {
			t.Fatalf("unexpected api key header: %s", got)
		}
		var payload soraCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload.Model != "sora" {
			t.Fatalf("unexpected model: %s", payload.Model)
		}
		if payload.Width != "1920" || payload.Height != "1080" {
			t.Fatalf("unexpected dimensions: %sx%s", payload.Width, payload.Height)
		}
		if payload.NSeconds != "5" || payload.NVariants != "1" {
			t.Fatalf("unexpected seconds/variants: %s/%s", payload.NSeconds, payload.NVariants)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "task_01",
			"status":         "queued",
			"revised_prompt": "a vivid sunset over the ocean",
		})
	}))
	defer ts.Close()

	client := NewSoraClient(SoraOptions{Endpoint: ts.URL, APIKey: "test-key"})
	sub, err := client.Submit(context.Background(), Request{Prompt: "a sunset", Resolution: "1920x1080", Duration: 5})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if sub.JobID != "task_01" {
		t.Fatalf("unexpected job id: %s", sub.JobID)
	}
	if sub.RevisedPrompt != "a vivid sunset over the ocean" {
		t.Fatalf("unexpected revised prompt: %s", sub.RevisedPrompt)
	}
}

func TestSoraSubmitMissingJobID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "queued"})
	}))
	defer ts.Close()

	client := NewSoraClient(SoraOptions{Endpoint: ts.URL, APIKey: "test-key"})
	_, err := client.Submit(context.Background(), Request{Prompt: "a sunset", Resolution: "1920x1080", Duration: 5})
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != ErrKindUnknown {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestSoraErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, ErrKindAuth},
		{http.StatusForbidden, ErrKindAuth},
		{http.StatusBadRequest, ErrKindInvalidRequest},
		{http.StatusTooManyRequests, ErrKindRateLimited},
		{http.StatusServiceUnavailable, ErrKindTransient},
		{http.StatusTeapot, ErrKindUnknown},
	}
	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "nope"}})
		}))

		client := NewSoraClient(SoraOptions{Endpoint: ts.URL, APIKey: "test-key"})
		_, err := client.Submit(context.Background(), Request{Prompt: "a sunset", Resolution: "1920x1080", Duration: 5})
		ts.Close()

		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("status %d: expected provider error, got %v", tt.status, err)
		}
		if perr.Kind != tt.kind {
			t.Fatalf("status %d: kind = %s, want %s", tt.status, perr.Kind, tt.kind)
		}
		if perr.Message != "nope" {
			t.Fatalf("status %d: message not taken from body: %s", tt.status, perr.Message)
		}
	}
}

func TestSoraPollStates(t *testing.T) {
	responses := map[string]map[string]any{
		"queued":  {"id": "j", "status": "queued"},
		"running": {"id": "j", "status": "running", "progress": 42},
		"succeeded": {
			"id":      "j",
			"status":  "succeeded",
			"prompt":  "a sunset",
			"outputs": []map[string]string{{"url": "https://cdn.example.com/video.mp4"}},
		},
		"failed": {
			"id":     "j",
			"status": "failed",
			"error":  map[string]string{"message": "content policy violation"},
		},
	}

	var current string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/video/generations/jobs/j" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(responses[current])
	}))
	defer ts.Close()

	client := NewSoraClient(SoraOptions{Endpoint: ts.URL, APIKey: "test-key"})

	current = "queued"
	res, err := client.Poll(context.Background(), "j")
	if err != nil || res.State != StateQueued {
		t.Fatalf("queued: got %+v, %v", res, err)
	}

	current = "running"
	res, err = client.Poll(context.Background(), "j")
	if err != nil || res.State != StateRunning || res.Progress != 42 {
		t.Fatalf("running: got %+v, %v", res, err)
	}

	current = "succeeded"
	res, err = client.Poll(context.Background(), "j")
	if err != nil {
		t.Fatalf("succeeded: %v", err)
	}
	if res.State != StateSucceeded || res.Progress != 100 {
		t.Fatalf("succeeded: got %+v", res)
	}
	if res.VideoURL != "https://cdn.example.com/video.mp4" {
		t.Fatalf("succeeded: unexpected url %s", res.VideoURL)
	}
	if res.RevisedPrompt != "a sunset" {
		t.Fatalf("succeeded: revised prompt should fall back to prompt, got %q", res.RevisedPrompt)
	}

	current = "failed"
	res, err = client.Poll(context.Background(), "j")
	if err != nil || res.State != StateFailed || res.Reason != "content policy violation" {
		t.Fatalf("failed: got %+v, %v", res, err)
	}
}

func TestSoraPollSucceededWithoutOutputs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "j", "status": "succeeded"})
	}))
	defer ts.Close()

	client := NewSoraClient(SoraOptions{Endpoint: ts.URL, APIKey: "test-key"})
	res, err := client.Poll(context.Background(), "j")
	if err != nil {
		t.Fatalf("Poll error: %v", err)
	}
	if res.State != StateFailed || res.Reason == "" {
		t.Fatalf("expected failed result with reason, got %+v", res)
	}
}

func TestSoraPollUnknownStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "j", "status": "paused"})
	}))
	defer ts.Close()

	client := NewSoraClient(SoraOptions{Endpoint: ts.URL, APIKey: "test-key"})
	_, err := client.Poll(context.Background(), "j")
	var perr *Error
	if !errors.As(err, &perr) || perr.Kind != ErrKindUnknown {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in     string
		width  int
		height int
	}{
		{"1920x1080", 1920, 1080},
		{"720x1280", 720, 1280},
		{"garbage", 1920, 1080},
		{"0x100", 1920, 1080},
	}
	for _, tt := range tests {
		w, h := parseResolution(tt.in)
		if w != tt.width || h != tt.height {
			t.Fatalf("parseResolution(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.width, tt.height)
		}
	}
}

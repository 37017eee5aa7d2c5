package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loryanstrant/azure-openai-sora-webserver/internal/domain"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/providers/video"
)

type generateRequest struct {
	Prompt     string `json:"prompt"`
	Resolution string `json:"resolution"`
	Duration   int    `json:"duration"`
}

type generateResponse struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

type statusResponse struct {
	VideoID       string `json:"video_id"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	Prompt        string `json:"prompt"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
	Resolution    string `json:"resolution"`
	Duration      int    `json:"duration"`
	VideoURL      string `json:"video_url,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	job, err := a.Jobs.Submit(r.Context(), domain.GenerationRequest{
		Prompt:     req.Prompt,
		Resolution: req.Resolution,
		Duration:   req.Duration,
	})
	if err != nil {
		var verr *domain.ValidationError
		var perr *video.Error
		switch {
		case errors.As(err, &verr):
			a.error(w, http.StatusBadRequest, "validation_error", verr.Error())
		case errors.Is(err, domain.ErrCapacityExceeded):
			a.error(w, http.StatusTooManyRequests, "capacity_exceeded", "too many concurrent jobs, retry later")
		case errors.As(err, &perr):
			a.error(w, http.StatusBadGateway, "provider_error", perr.Message)
		default:
			a.Logger.Error().Err(err).Msg("submit failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to submit video job")
		}
		return
	}

	a.json(w, http.StatusAccepted, generateResponse{VideoID: job.ID, Status: string(job.Status)})
}

func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "video_id")
	job, err := a.Jobs.Status(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "video job not found")
		return
	}

	a.json(w, http.StatusOK, statusResponse{
		VideoID:       job.ID,
		Status:        string(job.Status),
		Progress:      job.Progress,
		Prompt:        job.Prompt,
		RevisedPrompt: job.RevisedPrompt,
		Resolution:    job.Resolution,
		Duration:      job.Duration,
		VideoURL:      job.VideoURL,
		ErrorMessage:  job.ErrorMessage,
		CreatedAt:     job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     job.UpdatedAt.Format(time.RFC3339),
	})
}

func (a *App) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed := a.Jobs.Cleanup()
	a.json(w, http.StatusOK, map[string]int{"removed": removed})
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loryanstrant/azure-openai-sora-webserver/internal/domain"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/infra"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/infra/metrics"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/jobstore"
	"github.com/loryanstrant/azure-openai-sora-webserver/internal/providers/video"
)

// Config bounds the controller's polling and cleanup behavior. All values
// come from deployment configuration.
type Config struct {
	MaxConcurrentJobs      int
	PollInterval           time.Duration
	MaxPollAttempts        int
	MaxConsecutiveFailures int
	JobMaxAge              time.Duration
	CleanupInterval        time.Duration
}

// Controller orchestrates the job lifecycle: validate, submit to the
// provider, create the record, poll in the background and update the store.
// Each job's record is written only by its own polling goroutine.
type Controller struct {
	cfg       Config
	store     *jobstore.Store
	generator video.Generator
	validator *domain.Validator
	logger    infra.Logger

	slots  chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController wires the lifecycle controller and starts the periodic
// stale-job sweeper when a cleanup interval is configured.
func NewController(cfg Config, store *jobstore.Store, generator video.Generator, validator *domain.Validator, logger infra.Logger) *Controller {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 60
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = 5
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:       cfg,
		store:     store,
		generator: generator,
		validator: validator,
		logger:    logger,
		slots:     make(chan struct{}, cfg.MaxConcurrentJobs),
		ctx:       ctx,
		cancel:    cancel,
	}

	if cfg.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.sweepLoop()
	}
	return c
}

// Submit validates the request, reserves a polling slot, registers the job
// with the provider and spawns the polling goroutine. It returns as soon as
// the record exists; it never blocks on generation.
//
// A provider rejection during submit fails the call itself, so no partial
// job is ever left behind for the caller to poll.
func (c *Controller) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.VideoJob, error) {
	normalized, err := c.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	select {
	case c.slots <- struct{}{}:
	default:
		return nil, domain.ErrCapacityExceeded
	}

	sub, err := c.generator.Submit(ctx, video.Request{
		Prompt:     normalized.Prompt,
		Resolution: normalized.Resolution,
		Duration:   normalized.Duration,
	})
	metrics.ProviderRequestsTotal.WithLabelValues("submit", outcome(err)).Inc()
	if err != nil {
		<-c.slots
		return nil, fmt.Errorf("provider rejected submission: %w", err)
	}

	now := time.Now().UTC()
	job := &domain.VideoJob{
		ID:            uuid.NewString(),
		Status:        domain.JobStatusPending,
		Prompt:        normalized.Prompt,
		RevisedPrompt: sub.RevisedPrompt,
		Resolution:    normalized.Resolution,
		Duration:      normalized.Duration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.store.Put(job); err != nil {
		<-c.slots
		return nil, err
	}
	if evicted := c.store.EvictIfOverCapacity(); evicted > 0 {
		metrics.StoreEvictionsTotal.Add(float64(evicted))
		c.logger.Debug().Int("evicted", evicted).Msg("evicted terminal jobs over capacity")
	}
	metrics.JobsSubmittedTotal.Inc()

	c.logger.Info().
		Str("job_id", job.ID).
		Str("provider_job_id", sub.JobID).
		Str("resolution", job.Resolution).
		Int("duration", job.Duration).
		Msg("video job submitted")

	c.wg.Add(1)
	go c.poll(job.ID, sub.JobID)

	return job.Clone(), nil
}

// Status returns a snapshot of the job record.
func (c *Controller) Status(id string) (*domain.VideoJob, error) {
	return c.store.Get(id)
}

// Cleanup removes terminal records older than the configured max age and
// returns how many were removed.
func (c *Controller) Cleanup() int {
	if c.cfg.JobMaxAge <= 0 {
		return 0
	}
	return c.store.SweepStale(c.cfg.JobMaxAge)
}

// Shutdown stops all polling tasks and waits for them to finish or for ctx
// to expire. Abandoned jobs stay in their last-known state, which is
// acceptable since nothing is persisted anyway.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.cancel()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// poll drives one job to a terminal state. It is the only writer for that
// job's record.
func (c *Controller) poll(jobID, providerJobID string) {
	defer c.wg.Done()
	defer func() { <-c.slots }()

	metrics.ActivePolls.Inc()
	defer metrics.ActivePolls.Dec()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0
	unknownRetried := false

	for attempt := 0; attempt < c.cfg.MaxPollAttempts; attempt++ {
		select {
		case <-c.ctx.Done():
			c.logger.Warn().Str("job_id", jobID).Msg("abandoning poll on shutdown")
			return
		case <-ticker.C:
		}

		res, err := c.generator.Poll(c.ctx, providerJobID)
		metrics.ProviderRequestsTotal.WithLabelValues("poll", outcome(err)).Inc()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			switch providerErrorKind(err) {
			case video.ErrKindTransient, video.ErrKindRateLimited:
				consecutiveFailures++
				c.logger.Warn().
					Str("job_id", jobID).
					Int("consecutive_failures", consecutiveFailures).
					Err(err).
					Msg("transient provider error while polling")
				if consecutiveFailures > c.cfg.MaxConsecutiveFailures {
					c.fail(jobID, "timed out waiting for the provider: "+err.Error())
					return
				}
			case video.ErrKindUnknown:
				if !unknownRetried {
					unknownRetried = true
					continue
				}
				c.fail(jobID, err.Error())
				return
			default:
				// Auth or invalid-request during polling never resolves on retry.
				c.fail(jobID, err.Error())
				return
			}
			continue
		}
		consecutiveFailures = 0

		switch res.State {
		case video.StateQueued:
			// Still waiting in the provider's queue; the record stays pending.
		case video.StateRunning:
			c.applyUpdate(jobID, func(j *domain.VideoJob) {
				j.Status = domain.JobStatusProcessing
				if res.Progress > j.Progress {
					j.Progress = res.Progress
				}
			})
		case video.StateSucceeded:
			c.applyUpdate(jobID, func(j *domain.VideoJob) {
				j.Status = domain.JobStatusCompleted
				j.Progress = 100
				j.VideoURL = res.VideoURL
				if res.RevisedPrompt != "" {
					j.RevisedPrompt = res.RevisedPrompt
				}
			})
			metrics.JobsFinishedTotal.WithLabelValues(string(domain.JobStatusCompleted)).Inc()
			c.logger.Info().Str("job_id", jobID).Msg("video job completed")
			return
		case video.StateFailed:
			c.fail(jobID, res.Reason)
			return
		}
	}

	c.fail(jobID, "job did not complete within the polling window")
}

func (c *Controller) fail(jobID, reason string) {
	c.applyUpdate(jobID, func(j *domain.VideoJob) {
		j.Status = domain.JobStatusFailed
		j.ErrorMessage = reason
	})
	metrics.JobsFinishedTotal.WithLabelValues(string(domain.JobStatusFailed)).Inc()
	c.logger.Error().Str("job_id", jobID).Str("reason", reason).Msg("video job failed")
}

func (c *Controller) applyUpdate(jobID string, fn func(*domain.VideoJob)) {
	if err := c.store.Update(jobID, fn); err != nil {
		// Record evicted or swept mid-poll; nothing left to update.
		c.logger.Warn().Str("job_id", jobID).Err(err).Msg("job record gone during update")
	}
}

func (c *Controller) sweepLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Cleanup(); removed > 0 {
				c.logger.Info().Int("removed", removed).Msg("swept stale jobs")
			}
		}
	}
}

func providerErrorKind(err error) video.ErrorKind {
	var perr *video.Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return video.ErrKindUnknown
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(providerErrorKind(err))
}

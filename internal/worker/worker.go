package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/logger"
	"welcomecraft/internal/infra/metrics"
	"welcomecraft/internal/usecase"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultJobTimeout   = 3 * time.Minute
	statusUpdateTimeout = 10 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// SiteJobWorker drains the site generation queue one job at a time.
type SiteJobWorker struct {
	jobRepo         domain.SiteJobRepository
	generateUsecase usecase.GenerateSiteUsecase
	logger          *slog.Logger
	stopChan        chan struct{}
	stopOnce        sync.Once
	done            chan struct{}
	backoff         time.Duration
	jobTimeout      time.Duration
}

func NewSiteJobWorker(
	jobRepo domain.SiteJobRepository,
	generateUsecase usecase.GenerateSiteUsecase,
	logger *slog.Logger,
) *SiteJobWorker {
	return &SiteJobWorker{
		jobRepo:         jobRepo,
		generateUsecase: generateUsecase,
		logger:          logger,
		stopChan:        make(chan struct{}),
		done:            make(chan struct{}),
		jobTimeout:      defaultJobTimeout,
	}
}

func (w *SiteJobWorker) Start() {
	w.logger.Info("site_job_worker_started")
	go w.run()
}

// Stop signals the loop and waits for the in-flight job to finish.
func (w *SiteJobWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("site_job_worker_stopping")
		close(w.stopChan)
	})
	<-w.done
}

func (w *SiteJobWorker) run() {
	defer close(w.done)
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *SiteJobWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("site_job_acquire_failed", slog.String("error", err.Error()))
		return
	}
	if job == nil {
		return
	}

	ctx = logger.WithJobID(ctx, job.ID.String())
	w.logger.InfoContext(ctx, "site_job_processing")

	out, processErr := w.generateUsecase.Execute(ctx, usecase.GenerateSiteInput{
		UserID:  job.UserID,
		WorldID: job.WorldID,
		Prompt:  job.Payload.Prompt,
		Title:   job.Payload.Title,
	})
	if processErr == nil && out.ArtifactID == nil {
		processErr = errMissingArtifact
	}

	// The job deadline may already have passed; the status write must still land
	// or the row stays in processing.
	updCtx, updCancel := context.WithTimeout(context.WithoutCancel(ctx), statusUpdateTimeout)
	defer updCancel()

	if processErr != nil {
		w.backoff = w.nextBackoff(w.backoff)
		metrics.RecordJob(domain.JobStatusFailed)
		w.logger.WarnContext(ctx, "site_job_failed",
			slog.Duration("backoff", w.backoff),
			slog.String("error", processErr.Error()))
		if err := w.jobRepo.Fail(updCtx, job.ID, processErr.Error()); err != nil {
			w.logger.ErrorContext(ctx, "site_job_status_update_failed", slog.String("error", err.Error()))
		}
		return
	}

	w.backoff = 0
	metrics.RecordJob(domain.JobStatusCompleted)
	w.logger.InfoContext(ctx, "site_job_completed",
		slog.String("artifact_id", out.ArtifactID.String()),
		slog.Bool("fallback", out.Fallback))
	if err := w.jobRepo.Complete(updCtx, job.ID, *out.ArtifactID); err != nil {
		w.logger.ErrorContext(ctx, "site_job_status_update_failed", slog.String("error", err.Error()))
	}
}

func (w *SiteJobWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

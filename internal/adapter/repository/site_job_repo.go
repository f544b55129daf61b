package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"welcomecraft/internal/domain"
)

type siteJobRepository struct {
	db PgxIface
}

// NewSiteJobRepository creates a new SiteJobRepository.
func NewSiteJobRepository(db PgxIface) domain.SiteJobRepository {
	return &siteJobRepository{db: db}
}

const siteJobColumns = `id, user_id, world_id, payload, status, error_message, result_artifact_id, created_at, updated_at`

func (r *siteJobRepository) Enqueue(ctx context.Context, job *domain.SiteJob) error {
	query := `
		INSERT INTO site_generation_jobs (` + siteJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	payloadBytes, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = executor(ctx, r.db).Exec(ctx, query,
		job.ID,
		job.UserID,
		job.WorldID,
		payloadBytes,
		job.Status,
		job.ErrorMessage,
		job.ResultArtifactID,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// AcquireNextJob claims the oldest new job in a single statement so
// concurrent workers never pick the same row.
func (r *siteJobRepository) AcquireNextJob(ctx context.Context) (*domain.SiteJob, error) {
	query := `
		WITH next_job AS (
			SELECT id
			FROM site_generation_jobs
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE site_generation_jobs j
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE j.id = next_job.id
		RETURNING j.id, j.user_id, j.world_id, j.payload, j.status, j.error_message, j.result_artifact_id, j.created_at, j.updated_at
	`

	job, err := scanSiteJob(executor(ctx, r.db).QueryRow(ctx, query, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire next job: %w", err)
	}
	return job, nil
}

func (r *siteJobRepository) Complete(ctx context.Context, id uuid.UUID, artifactID uuid.UUID) error {
	query := `
		UPDATE site_generation_jobs
		SET status = $1, result_artifact_id = $2, error_message = NULL, updated_at = $3
		WHERE id = $4
	`
	_, err := executor(ctx, r.db).Exec(ctx, query, domain.JobStatusCompleted, artifactID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

func (r *siteJobRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE site_generation_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := executor(ctx, r.db).Exec(ctx, query, domain.JobStatusFailed, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return nil
}

func (r *siteJobRepository) Get(ctx context.Context, id uuid.UUID, userID string) (*domain.SiteJob, error) {
	query := `
		SELECT ` + siteJobColumns + `
		FROM site_generation_jobs
		WHERE id = $1 AND user_id = $2
	`
	job, err := scanSiteJob(executor(ctx, r.db).QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func scanSiteJob(row pgx.Row) (*domain.SiteJob, error) {
	var job domain.SiteJob
	var payloadBytes []byte
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.WorldID,
		&payloadBytes,
		&job.Status,
		&job.ErrorMessage,
		&job.ResultArtifactID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payloadBytes, &job.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &job, nil
}

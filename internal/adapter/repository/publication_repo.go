package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"welcomecraft/internal/domain"
)

type publicationRepository struct {
	db PgxIface
}

// NewPublicationRepository creates a new PublicationRepository.
func NewPublicationRepository(db PgxIface) domain.PublicationRepository {
	return &publicationRepository{db: db}
}

func (r *publicationRepository) Publish(ctx context.Context, p *domain.Publication) error {
	query := `
		INSERT INTO artifact_publications (id, artifact_id, user_id, published_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := executor(ctx, r.db).Exec(ctx, query, p.ID, p.ArtifactID, p.UserID, p.PublishedAt, p.ExpiresAt, p.RevokedAt)
	if err != nil {
		return fmt.Errorf("failed to insert publication: %w", err)
	}
	return nil
}

func (r *publicationRepository) Revoke(ctx context.Context, artifactID uuid.UUID, userID string, at time.Time) error {
	query := `
		UPDATE artifact_publications
		SET revoked_at = $1
		WHERE artifact_id = $2 AND user_id = $3 AND revoked_at IS NULL
	`
	_, err := executor(ctx, r.db).Exec(ctx, query, at, artifactID, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke publications: %w", err)
	}
	return nil
}

func (r *publicationRepository) GetPublishedArtifact(ctx context.Context, artifactID uuid.UUID, at time.Time) (*domain.Artifact, error) {
	query := `
		SELECT a.id, a.created_at, a.user_id, a.world_id, a.kind, a.title, a.summary, a.content, a.deleted_at
		FROM artifact_publications p
		JOIN LATERAL (
			SELECT id, created_at, user_id, world_id, kind, title, summary, content, deleted_at
			FROM artifacts
			WHERE artifacts.id = p.artifact_id AND artifacts.user_id = p.user_id
			ORDER BY created_at DESC
			LIMIT 1
		) a ON true
		WHERE p.artifact_id = $1
			AND p.published_at <= $2
			AND (p.revoked_at IS NULL OR p.revoked_at > $2)
			AND (p.expires_at IS NULL OR p.expires_at > $2)
		LIMIT 1
	`
	a, err := scanArtifact(executor(ctx, r.db).QueryRow(ctx, query, artifactID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotPublished
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan published artifact: %w", err)
	}
	if a.DeletedAt != nil {
		return nil, domain.ErrNotPublished
	}
	return a, nil
}

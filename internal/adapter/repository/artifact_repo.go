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

type artifactRepository struct {
	db PgxIface
}

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(db PgxIface) domain.ArtifactRepository {
	return &artifactRepository{db: db}
}

const listCandidatesQuery = `
		SELECT id, title, summary, kind
		FROM (
			SELECT DISTINCT ON (id) id, title, summary, kind, created_at, deleted_at
			FROM artifacts
			WHERE user_id = $1 AND world_id IS NOT DISTINCT FROM $2
			ORDER BY id, created_at DESC
		) latest
		WHERE deleted_at IS NULL AND kind = ANY($3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5
	`

func (r *artifactRepository) ListCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.ArtifactCandidate, error) {
	kinds := make([]string, len(q.Kinds))
	for i, k := range q.Kinds {
		kinds[i] = string(k)
	}

	rows, err := executor(ctx, r.db).Query(ctx, listCandidatesQuery, q.UserID, q.WorldID, kinds, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]domain.ArtifactCandidate, 0, q.Limit)
	for rows.Next() {
		var c domain.ArtifactCandidate
		var kind string
		if err := rows.Scan(&c.ArtifactID, &c.Title, &c.Summary, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Kind = domain.ArtifactKind(kind)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

func (r *artifactRepository) Create(ctx context.Context, a *domain.Artifact) error {
	query := `
		INSERT INTO artifacts (id, created_at, user_id, world_id, kind, title, summary, content, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := executor(ctx, r.db).Exec(ctx, query,
		a.ID, a.CreatedAt, a.UserID, a.WorldID, string(a.Kind), a.Title, a.Summary, a.Content, a.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	return nil
}

func (r *artifactRepository) GetLatest(ctx context.Context, id uuid.UUID, userID string, worldID *string) (*domain.Artifact, error) {
	query := `
		SELECT id, created_at, user_id, world_id, kind, title, summary, content, deleted_at
		FROM artifacts
		WHERE id = $1 AND user_id = $2 AND world_id IS NOT DISTINCT FROM $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	a, err := scanArtifact(executor(ctx, r.db).QueryRow(ctx, query, id, userID, worldID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifact: %w", err)
	}
	if a.DeletedAt != nil {
		return nil, domain.ErrArtifactNotFound
	}
	return a, nil
}

func (r *artifactRepository) SoftDelete(ctx context.Context, id uuid.UUID, userID string, worldID *string) error {
	query := `
		UPDATE artifacts
		SET deleted_at = $1
		WHERE id = $2 AND user_id = $3 AND world_id IS NOT DISTINCT FROM $4 AND deleted_at IS NULL
	`
	tag, err := executor(ctx, r.db).Exec(ctx, query, time.Now().UTC(), id, userID, worldID)
	if err != nil {
		return fmt.Errorf("failed to soft delete artifact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrArtifactNotFound
	}
	return nil
}

func scanArtifact(row pgx.Row) (*domain.Artifact, error) {
	var a domain.Artifact
	var kind string
	err := row.Scan(&a.ID, &a.CreatedAt, &a.UserID, &a.WorldID, &kind, &a.Title, &a.Summary, &a.Content, &a.DeletedAt)
	if err != nil {
		return nil, err
	}
	a.Kind = domain.ArtifactKind(kind)
	return &a, nil
}

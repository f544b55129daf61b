package repository

import (
	"context"
	"fmt"

	"welcomecraft/internal/domain"
)

type siteGenerationRepository struct {
	db PgxIface
}

// NewSiteGenerationRepository creates a new SiteGenerationRepository.
func NewSiteGenerationRepository(db PgxIface) domain.SiteGenerationRepository {
	return &siteGenerationRepository{db: db}
}

func (r *siteGenerationRepository) Record(ctx context.Context, g *domain.SiteGeneration) error {
	query := `
		INSERT INTO site_generations (id, artifact_id, user_id, world_id, prompt, model, fallback, total_candidates, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := executor(ctx, r.db).Exec(ctx, query,
		g.ID, g.ArtifactID, g.UserID, g.WorldID, g.Prompt, g.Model, g.Fallback, g.TotalCandidates, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert site generation: %w", err)
	}
	return nil
}

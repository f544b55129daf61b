package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/logger"
)

const defaultSiteTitle = "Onboarding site"

// GenerateSiteInput describes one site generation request.
type GenerateSiteInput struct {
	UserID  string
	WorldID *string
	Prompt  string
	Title   string
	// DryRun skips persistence and only returns the definition.
	DryRun bool
}

// GenerateSiteOutput is the generated site and where it was stored.
type GenerateSiteOutput struct {
	ArtifactID      *uuid.UUID
	Site            *domain.SiteDefinition
	Fallback        bool
	Reason          string
	Model           string
	TotalCandidates int
}

// GenerateSiteUsecase runs aggregation and selection, then stores the result as a site artifact.
type GenerateSiteUsecase interface {
	Execute(ctx context.Context, input GenerateSiteInput) (*GenerateSiteOutput, error)
}

type generateSiteUsecase struct {
	aggregator     CandidateAggregator
	selector       HolisticSelector
	artifactRepo   domain.ArtifactRepository
	generationRepo domain.SiteGenerationRepository
	txManager      domain.TransactionManager
	now            func() time.Time
	logger         *slog.Logger
}

// NewGenerateSiteUsecase wires the generation pipeline.
func NewGenerateSiteUsecase(
	aggregator CandidateAggregator,
	selector HolisticSelector,
	artifactRepo domain.ArtifactRepository,
	generationRepo domain.SiteGenerationRepository,
	txManager domain.TransactionManager,
	log *slog.Logger,
) GenerateSiteUsecase {
	return &generateSiteUsecase{
		aggregator:     aggregator,
		selector:       selector,
		artifactRepo:   artifactRepo,
		generationRepo: generationRepo,
		txManager:      txManager,
		now:            time.Now,
		logger:         log,
	}
}

func (u *generateSiteUsecase) Execute(ctx context.Context, input GenerateSiteInput) (*GenerateSiteOutput, error) {
	if input.UserID == "" {
		return nil, errors.New("user id is required")
	}
	prompt := strings.TrimSpace(input.Prompt)

	ctx = logger.WithUserID(ctx, input.UserID)
	if input.WorldID != nil {
		ctx = logger.WithWorldID(ctx, *input.WorldID)
	}
	ctx, span := tracer.Start(ctx, "GenerateSite.Execute")
	defer span.End()

	u.logger.InfoContext(ctx, "site_generation_started",
		slog.String("prompt", truncate(prompt, 200)),
		slog.Bool("dry_run", input.DryRun))

	bundle, err := u.aggregator.Execute(ctx, AggregateInput{
		UserID:  input.UserID,
		WorldID: input.WorldID,
		Prompt:  prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate candidates: %w", err)
	}

	selection, err := u.selector.Select(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to select site content: %w", err)
	}

	out := &GenerateSiteOutput{
		Site:            selection.Site,
		Fallback:        selection.Fallback,
		Reason:          selection.Reason,
		Model:           selection.Model,
		TotalCandidates: bundle.TotalArtifacts,
	}
	if input.DryRun {
		return out, nil
	}

	content, err := json.Marshal(selection.Site)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize site definition: %w", err)
	}

	now := u.now().UTC()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultSiteTitle
	}
	artifact := &domain.Artifact{
		ID:        uuid.New(),
		CreatedAt: now,
		UserID:    input.UserID,
		WorldID:   input.WorldID,
		Kind:      domain.KindSite,
		Title:     title,
		Summary:   fmt.Sprintf("Onboarding site with %d blocks for: %s", len(selection.Site.Blocks), truncate(prompt, 120)),
		Content:   string(content),
	}
	generation := &domain.SiteGeneration{
		ID:              uuid.New(),
		ArtifactID:      artifact.ID,
		UserID:          input.UserID,
		WorldID:         input.WorldID,
		Prompt:          prompt,
		Model:           selection.Model,
		Fallback:        selection.Fallback,
		TotalCandidates: bundle.TotalArtifacts,
		CreatedAt:       now,
	}

	err = u.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := u.artifactRepo.Create(ctx, artifact); err != nil {
			return err
		}
		return u.generationRepo.Record(ctx, generation)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist site artifact: %w", err)
	}

	u.logger.InfoContext(ctx, "site_generation_completed",
		slog.String("artifact_id", artifact.ID.String()),
		slog.Bool("fallback", selection.Fallback),
		slog.Int("total_candidates", bundle.TotalArtifacts))

	out.ArtifactID = &artifact.ID
	return out, nil
}

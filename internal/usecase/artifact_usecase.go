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
)

// CreateArtifactInput carries a new artifact or a new version of an existing one.
type CreateArtifactInput struct {
	// ID is set to append a version to an existing artifact.
	ID      *uuid.UUID
	UserID  string
	WorldID *string
	Kind    domain.ArtifactKind
	Title   string
	Summary string
	Content string
}

// PublishInput makes an artifact publicly readable until ExpiresAt.
type PublishInput struct {
	ArtifactID uuid.UUID
	UserID     string
	WorldID    *string
	ExpiresAt  *time.Time
}

// PublishedSite is a public site artifact with its referenced artifacts resolved.
type PublishedSite struct {
	Artifact  *domain.Artifact
	Site      domain.SiteDefinition
	Artifacts map[string]*domain.Artifact
}

// ArtifactUsecase manages artifacts and their publication.
type ArtifactUsecase interface {
	Create(ctx context.Context, input CreateArtifactInput) (*domain.Artifact, error)
	Get(ctx context.Context, id uuid.UUID, userID string, worldID *string) (*domain.Artifact, error)
	List(ctx context.Context, q domain.CandidateQuery) ([]domain.ArtifactCandidate, error)
	Delete(ctx context.Context, id uuid.UUID, userID string, worldID *string) error
	Publish(ctx context.Context, input PublishInput) (*domain.Publication, error)
	Unpublish(ctx context.Context, id uuid.UUID, userID string, worldID *string) error
	GetPublishedSite(ctx context.Context, id uuid.UUID) (*PublishedSite, error)
}

// ErrInvalidArtifact is returned for inputs that cannot be stored.
var ErrInvalidArtifact = errors.New("invalid artifact")

type artifactUsecase struct {
	artifactRepo    domain.ArtifactRepository
	publicationRepo domain.PublicationRepository
	now             func() time.Time
	logger          *slog.Logger
}

// NewArtifactUsecase creates the artifact usecase.
func NewArtifactUsecase(
	artifactRepo domain.ArtifactRepository,
	publicationRepo domain.PublicationRepository,
	log *slog.Logger,
) ArtifactUsecase {
	return &artifactUsecase{
		artifactRepo:    artifactRepo,
		publicationRepo: publicationRepo,
		now:             time.Now,
		logger:          log,
	}
}

func (u *artifactUsecase) Create(ctx context.Context, input CreateArtifactInput) (*domain.Artifact, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArtifact)
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidArtifact, input.Kind)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArtifact)
	}
	if input.Kind == domain.KindSite {
		var site domain.SiteDefinition
		if err := json.Unmarshal([]byte(input.Content), &site); err != nil {
			return nil, fmt.Errorf("%w: site content is not a site definition: %v", ErrInvalidArtifact, err)
		}
	}

	id := uuid.New()
	if input.ID != nil {
		existing, err := u.artifactRepo.GetLatest(ctx, *input.ID, input.UserID, input.WorldID)
		if err != nil {
			return nil, err
		}
		if existing.Kind != input.Kind {
			return nil, fmt.Errorf("%w: kind cannot change from %s to %s", ErrInvalidArtifact, existing.Kind, input.Kind)
		}
		id = existing.ID
	}

	artifact := &domain.Artifact{
		ID:        id,
		CreatedAt: u.now().UTC(),
		UserID:    input.UserID,
		WorldID:   input.WorldID,
		Kind:      input.Kind,
		Title:     title,
		Summary:   strings.TrimSpace(input.Summary),
		Content:   input.Content,
	}
	if err := u.artifactRepo.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to create artifact: %w", err)
	}

	u.logger.InfoContext(ctx, "artifact_saved",
		slog.String("artifact_id", artifact.ID.String()),
		slog.String("kind", string(artifact.Kind)),
		slog.Bool("new_version", input.ID != nil))
	return artifact, nil
}

func (u *artifactUsecase) Get(ctx context.Context, id uuid.UUID, userID string, worldID *string) (*domain.Artifact, error) {
	return u.artifactRepo.GetLatest(ctx, id, userID, worldID)
}

const maxListLimit = 100

// List returns the latest versions of the caller's artifacts, newest first.
// An empty kind filter means every kind.
func (u *artifactUsecase) List(ctx context.Context, q domain.CandidateQuery) ([]domain.ArtifactCandidate, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArtifact)
	}
	if len(q.Kinds) == 0 {
		q.Kinds = domain.AllKinds()
	}
	if q.Limit <= 0 || q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	items, err := u.artifactRepo.ListCandidates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return items, nil
}

func (u *artifactUsecase) Delete(ctx context.Context, id uuid.UUID, userID string, worldID *string) error {
	if _, err := u.artifactRepo.GetLatest(ctx, id, userID, worldID); err != nil {
		return err
	}
	if err := u.artifactRepo.SoftDelete(ctx, id, userID, worldID); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	// Deleted content must not stay reachable through a public link.
	if err := u.publicationRepo.Revoke(ctx, id, userID, u.now().UTC()); err != nil {
		return fmt.Errorf("failed to revoke publications: %w", err)
	}
	u.logger.InfoContext(ctx, "artifact_deleted", slog.String("artifact_id", id.String()))
	return nil
}

func (u *artifactUsecase) Publish(ctx context.Context, input PublishInput) (*domain.Publication, error) {
	if _, err := u.artifactRepo.GetLatest(ctx, input.ArtifactID, input.UserID, input.WorldID); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrInvalidArtifact)
	}

	pub := &domain.Publication{
		ID:          uuid.New(),
		ArtifactID:  input.ArtifactID,
		UserID:      input.UserID,
		PublishedAt: now,
		ExpiresAt:   input.ExpiresAt,
	}
	if err := u.publicationRepo.Publish(ctx, pub); err != nil {
		return nil, fmt.Errorf("failed to publish artifact: %w", err)
	}
	u.logger.InfoContext(ctx, "artifact_published",
		slog.String("artifact_id", input.ArtifactID.String()),
		slog.Any("expires_at", input.ExpiresAt))
	return pub, nil
}

func (u *artifactUsecase) Unpublish(ctx context.Context, id uuid.UUID, userID string, worldID *string) error {
	if _, err := u.artifactRepo.GetLatest(ctx, id, userID, worldID); err != nil {
		return err
	}
	if err := u.publicationRepo.Revoke(ctx, id, userID, u.now().UTC()); err != nil {
		return fmt.Errorf("failed to unpublish artifact: %w", err)
	}
	u.logger.InfoContext(ctx, "artifact_unpublished", slog.String("artifact_id", id.String()))
	return nil
}

func (u *artifactUsecase) GetPublishedSite(ctx context.Context, id uuid.UUID) (*PublishedSite, error) {
	artifact, err := u.publicationRepo.GetPublishedArtifact(ctx, id, u.now().UTC())
	if err != nil {
		return nil, err
	}
	if artifact.Kind != domain.KindSite {
		return nil, domain.ErrNotPublished
	}

	var site domain.SiteDefinition
	if err := json.Unmarshal([]byte(artifact.Content), &site); err != nil {
		return nil, fmt.Errorf("failed to decode site definition: %w", err)
	}

	resolved := make(map[string]*domain.Artifact)
	for _, block := range site.Blocks {
		for _, fill := range block.Slots {
			if fill.ArtifactID == "" {
				continue
			}
			if _, done := resolved[fill.ArtifactID]; done {
				continue
			}
			refID, err := uuid.Parse(fill.ArtifactID)
			if err != nil {
				continue
			}
			ref, err := u.artifactRepo.GetLatest(ctx, refID, artifact.UserID, artifact.WorldID)
			if errors.Is(err, domain.ErrArtifactNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to resolve artifact %s: %w", fill.ArtifactID, err)
			}
			resolved[fill.ArtifactID] = ref
		}
	}

	return &PublishedSite{Artifact: artifact, Site: site, Artifacts: resolved}, nil
}

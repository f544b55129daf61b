package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ArtifactRepository persists versioned artifacts.
type ArtifactRepository interface {
	// ListCandidates returns the latest non-deleted versions matching the query,
	// newest first.
	ListCandidates(ctx context.Context, q CandidateQuery) ([]ArtifactCandidate, error)

	// Create inserts a new version. Reusing an existing ID appends a version.
	Create(ctx context.Context, artifact *Artifact) error

	// GetLatest returns the current version owned by userID in worldID.
	// Returns ErrArtifactNotFound when missing or deleted.
	GetLatest(ctx context.Context, id uuid.UUID, userID string, worldID *string) (*Artifact, error)

	// SoftDelete stamps deleted_at on every version of the artifact.
	SoftDelete(ctx context.Context, id uuid.UUID, userID string, worldID *string) error
}

// Publication exposes an artifact outside the owner's workspace.
type Publication struct {
	ID          uuid.UUID
	ArtifactID  uuid.UUID
	UserID      string
	PublishedAt time.Time
	ExpiresAt   *time.Time
	RevokedAt   *time.Time
}

// ActiveAt reports whether the publication is visible at t.
func (p Publication) ActiveAt(t time.Time) bool {
	if p.RevokedAt != nil && !p.RevokedAt.After(t) {
		return false
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(t) {
		return false
	}
	return !p.PublishedAt.After(t)
}

// PublicationRepository manages artifact publications.
type PublicationRepository interface {
	Publish(ctx context.Context, p *Publication) error

	// Revoke ends every active publication of the artifact.
	Revoke(ctx context.Context, artifactID uuid.UUID, userID string, at time.Time) error

	// GetPublishedArtifact returns the current version of a published artifact.
	// Returns ErrNotPublished if no publication is active at `at`.
	GetPublishedArtifact(ctx context.Context, artifactID uuid.UUID, at time.Time) (*Artifact, error)
}

// SiteGeneration is the audit record of one persisted generation.
type SiteGeneration struct {
	ID              uuid.UUID
	ArtifactID      uuid.UUID
	UserID          string
	WorldID         *string
	Prompt          string
	Model           string
	Fallback        bool
	TotalCandidates int
	CreatedAt       time.Time
}

// SiteGenerationRepository stores generation audit records.
type SiteGenerationRepository interface {
	Record(ctx context.Context, g *SiteGeneration) error
}

// Site generation job states.
const (
	JobStatusNew        = "new"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// SiteJobPayload is the request captured for asynchronous generation.
type SiteJobPayload struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title,omitempty"`
}

// SiteJob is a queued asynchronous site generation.
type SiteJob struct {
	ID               uuid.UUID
	UserID           string
	WorldID          *string
	Payload          SiteJobPayload
	Status           string
	ErrorMessage     *string
	ResultArtifactID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SiteJobRepository is the durable queue behind asynchronous generation.
type SiteJobRepository interface {
	Enqueue(ctx context.Context, job *SiteJob) error

	// AcquireNextJob marks the oldest new job as processing and returns it.
	// Returns nil, nil when the queue is empty.
	AcquireNextJob(ctx context.Context) (*SiteJob, error)

	Complete(ctx context.Context, id uuid.UUID, artifactID uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, message string) error

	// Get returns a job owned by userID or ErrJobNotFound.
	Get(ctx context.Context, id uuid.UUID, userID string) (*SiteJob, error)
}

// TransactionManager defines the interface for handling database transactions.
type TransactionManager interface {
	// RunInTx executes the given function within a transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

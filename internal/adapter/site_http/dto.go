package site_http

import (
	"time"

	"welcomecraft/internal/domain"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// GenerateSiteRequest is the body of POST /v1/sites/generate.
type GenerateSiteRequest struct {
	Prompt string `json:"prompt" validate:"max=4000"`
	Title  string `json:"title" validate:"max=200"`
	DryRun bool   `json:"dryRun"`
	// Async enqueues a job instead of generating inline.
	Async bool `json:"async"`
}

// GenerateSiteResponse is returned by synchronous generation.
type GenerateSiteResponse struct {
	ArtifactID      *string                `json:"artifactId,omitempty"`
	Site            *domain.SiteDefinition `json:"site"`
	Fallback        bool                   `json:"fallback"`
	Reason          string                 `json:"reason,omitempty"`
	Model           string                 `json:"model"`
	TotalCandidates int                    `json:"totalCandidates"`
}

// CandidatesRequest is the body of POST /v1/sites/candidates.
type CandidatesRequest struct {
	Prompt string `json:"prompt" validate:"max=4000"`
}

// JobResponse describes an asynchronous generation job.
type JobResponse struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	Error            *string   `json:"error,omitempty"`
	ResultArtifactID *string   `json:"resultArtifactId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CreateArtifactRequest is the body of POST /v1/artifacts.
type CreateArtifactRequest struct {
	ID      *string `json:"id" validate:"omitempty,uuid"`
	Kind    string  `json:"kind" validate:"required"`
	Title   string  `json:"title" validate:"required,max=500"`
	Summary string  `json:"summary" validate:"max=2000"`
	Content string  `json:"content"`
}

// ArtifactResponse is the current version of an artifact.
type ArtifactResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	WorldID   *string   `json:"worldId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublishRequest is the optional body of POST /v1/artifacts/:id/publish.
type PublishRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

// PublicationResponse describes an active publication.
type PublicationResponse struct {
	ID          string     `json:"id"`
	ArtifactID  string     `json:"artifactId"`
	PublishedAt time.Time  `json:"publishedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// PublicSiteResponse is a published site with its referenced artifacts.
type PublicSiteResponse struct {
	ID        string                      `json:"id"`
	Title     string                      `json:"title"`
	Site      domain.SiteDefinition       `json:"site"`
	Artifacts map[string]ArtifactResponse `json:"artifacts"`
}

func toArtifactResponse(a *domain.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:        a.ID.String(),
		Kind:      string(a.Kind),
		Title:     a.Title,
		Summary:   a.Summary,
		Content:   a.Content,
		WorldID:   a.WorldID,
		CreatedAt: a.CreatedAt,
	}
}

func toJobResponse(j *domain.SiteJob) JobResponse {
	resp := JobResponse{
		ID:        j.ID.String(),
		Status:    j.Status,
		Error:     j.ErrorMessage,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.ResultArtifactID != nil {
		id := j.ResultArtifactID.String()
		resp.ResultArtifactID = &id
	}
	return resp
}

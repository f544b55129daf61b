package site_http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/usecase"
)

type Handler struct {
	generateUsecase usecase.GenerateSiteUsecase
	aggregator      usecase.CandidateAggregator
	artifactUsecase usecase.ArtifactUsecase
	jobRepo         domain.SiteJobRepository
	logger          *slog.Logger
}

func NewHandler(
	generateUsecase usecase.GenerateSiteUsecase,
	aggregator usecase.CandidateAggregator,
	artifactUsecase usecase.ArtifactUsecase,
	jobRepo domain.SiteJobRepository,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		generateUsecase: generateUsecase,
		aggregator:      aggregator,
		artifactUsecase: artifactUsecase,
		jobRepo:         jobRepo,
		logger:          logger,
	}
}

// Register mounts the API on e. Routes under /v1 require X-User-Id.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/v1", RequireIdentity())
	v1.POST("/sites/generate", h.GenerateSite)
	v1.POST("/sites/candidates", h.ListCandidates)
	v1.GET("/sites/jobs/:id", h.GetJob)

	v1.GET("/artifacts", h.ListArtifacts)
	v1.POST("/artifacts", h.CreateArtifact)
	v1.GET("/artifacts/:id", h.GetArtifact)
	v1.DELETE("/artifacts/:id", h.DeleteArtifact)
	v1.POST("/artifacts/:id/publish", h.PublishArtifact)
	v1.DELETE("/artifacts/:id/publish", h.UnpublishArtifact)

	e.GET("/public/sites/:id", h.GetPublicSite)
}

// Generate an onboarding site from the caller's artifacts
// (POST /v1/sites/generate)
func (h *Handler) GenerateSite(c echo.Context) error {
	var req GenerateSiteRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, worldID := identity(c)
	ctx := c.Request().Context()

	if req.Async {
		if req.DryRun {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "dryRun is not supported for async generation"})
		}
		now := time.Now().UTC()
		job := &domain.SiteJob{
			ID:        uuid.New(),
			UserID:    userID,
			WorldID:   worldID,
			Payload:   domain.SiteJobPayload{Prompt: req.Prompt, Title: req.Title},
			Status:    domain.JobStatusNew,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := h.jobRepo.Enqueue(ctx, job); err != nil {
			return h.writeError(c, err)
		}
		h.logger.InfoContext(ctx, "site_job_enqueued", slog.String("job_id", job.ID.String()))
		return c.JSON(http.StatusAccepted, toJobResponse(job))
	}

	out, err := h.generateUsecase.Execute(ctx, usecase.GenerateSiteInput{
		UserID:  userID,
		WorldID: worldID,
		Prompt:  req.Prompt,
		Title:   req.Title,
		DryRun:  req.DryRun,
	})
	if err != nil {
		return h.writeError(c, err)
	}

	resp := GenerateSiteResponse{
		Site:            out.Site,
		Fallback:        out.Fallback,
		Reason:          out.Reason,
		Model:           out.Model,
		TotalCandidates: out.TotalCandidates,
	}
	if out.ArtifactID != nil {
		id := out.ArtifactID.String()
		resp.ArtifactID = &id
	}
	return c.JSON(http.StatusOK, resp)
}

// Show the candidate bundle the selector would see
// (POST /v1/sites/candidates)
func (h *Handler) ListCandidates(c echo.Context) error {
	var req CandidatesRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, worldID := identity(c)

	bundle, err := h.aggregator.Execute(c.Request().Context(), usecase.AggregateInput{
		UserID:  userID,
		WorldID: worldID,
		Prompt:  req.Prompt,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, bundle)
}

// (GET /v1/sites/jobs/:id)
func (h *Handler) GetJob(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid job id"})
	}
	userID, _ := identity(c)

	job, err := h.jobRepo.Get(c.Request().Context(), id, userID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

// (GET /v1/artifacts?kinds=a,b&limit=&offset=)
// "kind" is accepted as an alias of "kinds".
func (h *Handler) ListArtifacts(c echo.Context) error {
	var rawKinds, aliasKinds []string
	var limit, offset int
	if err := echo.QueryParamsBinder(c).
		Strings("kinds", &rawKinds).
		Strings("kind", &aliasKinds).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid query parameters"})
	}

	rawKinds = append(rawKinds, aliasKinds...)
	kinds := make([]domain.ArtifactKind, 0, len(rawKinds))
	for _, raw := range rawKinds {
		for _, part := range strings.Split(raw, ",") {
			k, err := domain.ParseArtifactKind(part)
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
			}
			kinds = append(kinds, k)
		}
	}

	userID, worldID := identity(c)
	items, err := h.artifactUsecase.List(c.Request().Context(), domain.CandidateQuery{
		UserID:  userID,
		WorldID: worldID,
		Kinds:   kinds,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// Create an artifact, or a new version when id is given
// (POST /v1/artifacts)
func (h *Handler) CreateArtifact(c echo.Context) error {
	var req CreateArtifactRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	kind, err := domain.ParseArtifactKind(req.Kind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	userID, worldID := identity(c)

	input := usecase.CreateArtifactInput{
		UserID:  userID,
		WorldID: worldID,
		Kind:    kind,
		Title:   req.Title,
		Summary: req.Summary,
		Content: req.Content,
	}
	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid artifact id"})
		}
		input.ID = &id
	}

	artifact, err := h.artifactUsecase.Create(c.Request().Context(), input)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toArtifactResponse(artifact))
}

// (GET /v1/artifacts/:id)
func (h *Handler) GetArtifact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid artifact id"})
	}
	userID, worldID := identity(c)

	artifact, err := h.artifactUsecase.Get(c.Request().Context(), id, userID, worldID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toArtifactResponse(artifact))
}

// (DELETE /v1/artifacts/:id)
func (h *Handler) DeleteArtifact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid artifact id"})
	}
	userID, worldID := identity(c)

	if err := h.artifactUsecase.Delete(c.Request().Context(), id, userID, worldID); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// (POST /v1/artifacts/:id/publish)
func (h *Handler) PublishArtifact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid artifact id"})
	}
	var req PublishRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request"})
	}
	userID, worldID := identity(c)

	pub, err := h.artifactUsecase.Publish(c.Request().Context(), usecase.PublishInput{
		ArtifactID: id,
		UserID:     userID,
		WorldID:    worldID,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, PublicationResponse{
		ID:          pub.ID.String(),
		ArtifactID:  pub.ArtifactID.String(),
		PublishedAt: pub.PublishedAt,
		ExpiresAt:   pub.ExpiresAt,
	})
}

// (DELETE /v1/artifacts/:id/publish)
func (h *Handler) UnpublishArtifact(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid artifact id"})
	}
	userID, worldID := identity(c)

	if err := h.artifactUsecase.Unpublish(c.Request().Context(), id, userID, worldID); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Public read of a published site, no identity required
// (GET /public/sites/:id)
func (h *Handler) GetPublicSite(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: domain.ErrNotPublished.Error()})
	}

	published, err := h.artifactUsecase.GetPublishedSite(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}

	artifacts := make(map[string]ArtifactResponse, len(published.Artifacts))
	for refID, a := range published.Artifacts {
		artifacts[refID] = toArtifactResponse(a)
	}
	return c.JSON(http.StatusOK, PublicSiteResponse{
		ID:        published.Artifact.ID.String(),
		Title:     published.Artifact.Title,
		Site:      published.Site,
		Artifacts: artifacts,
	})
}

// bindAndValidate returns an *echo.HTTPError carrying an errorBody on failure.
func (h *Handler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Errors})
		}
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	return nil
}

func (h *Handler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrArtifactNotFound),
		errors.Is(err, domain.ErrNotPublished),
		errors.Is(err, domain.ErrJobNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidArtifact):
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		h.logger.ErrorContext(c.Request().Context(), "request_failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

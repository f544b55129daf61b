package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"welcomecraft/internal/adapter/llm"
	"welcomecraft/internal/adapter/repository"
	"welcomecraft/internal/adapter/site_http"
	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/config"
	"welcomecraft/internal/infra/httpclient"
	"welcomecraft/internal/usecase"
	"welcomecraft/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	ArtifactRepo domain.ArtifactRepository
	JobRepo      domain.SiteJobRepository

	// Usecases
	Aggregator      usecase.CandidateAggregator
	Selector        usecase.HolisticSelector
	GenerateUsecase usecase.GenerateSiteUsecase
	ArtifactUsecase usecase.ArtifactUsecase

	// Adapters
	LLMClient domain.LLMClient
	Handler   *site_http.Handler

	// Worker is nil when SITE_WORKER_ENABLED is false.
	Worker *worker.SiteJobWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, pool repository.PgxIface, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	artifactRepo := repository.NewArtifactRepository(pool)
	publicationRepo := repository.NewPublicationRepository(pool)
	generationRepo := repository.NewSiteGenerationRepository(pool)
	jobRepo := repository.NewSiteJobRepository(pool)
	txManager := repository.NewPostgresTransactionManager(pool)

	// LLM
	llmClient, err := NewLLMClient(ctx, cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	// Aggregation
	aggregator := usecase.NewCandidateAggregator(artifactRepo, log,
		usecase.WithCandidateLimit(cfg.Aggregator.CandidateLimit),
		usecase.WithAggregatorConcurrency(cfg.Aggregator.Concurrency),
	)

	// Selection
	selectorOpts := []usecase.SelectorOption{
		usecase.WithSelectorMaxTokens(cfg.LLM.MaxTokens),
	}
	if cfg.Selector.CacheSize > 0 {
		selectorOpts = append(selectorOpts,
			usecase.WithSelectionCache(cfg.Selector.CacheSize, time.Duration(cfg.Selector.CacheTTL)*time.Minute))
	}
	if cfg.Selector.RateLimit > 0 {
		burst := cfg.Selector.RateBurst
		if burst <= 0 {
			burst = 1
		}
		selectorOpts = append(selectorOpts,
			usecase.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Selector.RateLimit), burst)))
		log.Info("llm_rate_limit_enabled",
			slog.Float64("per_second", cfg.Selector.RateLimit),
			slog.Int("burst", burst))
	}
	selector := usecase.NewHolisticSelector(
		llmClient,
		usecase.NewSitePromptBuilder(cfg.LLM.Locale),
		usecase.NewSiteOutputValidator(),
		log,
		selectorOpts...,
	)

	generateUsecase := usecase.NewGenerateSiteUsecase(aggregator, selector, artifactRepo, generationRepo, txManager, log)
	artifactUsecase := usecase.NewArtifactUsecase(artifactRepo, publicationRepo, log)

	handler := site_http.NewHandler(generateUsecase, aggregator, artifactUsecase, jobRepo, log)

	var jobWorker *worker.SiteJobWorker
	if cfg.Worker.Enabled {
		jobWorker = worker.NewSiteJobWorker(jobRepo, generateUsecase, log)
	}

	return &ApplicationComponents{
		ArtifactRepo:    artifactRepo,
		JobRepo:         jobRepo,
		Aggregator:      aggregator,
		Selector:        selector,
		GenerateUsecase: generateUsecase,
		ArtifactUsecase: artifactUsecase,
		LLMClient:       llmClient,
		Handler:         handler,
		Worker:          jobWorker,
	}, nil
}

// NewLLMClient builds the client named by cfg.Provider.
func NewLLMClient(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (domain.LLMClient, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	switch cfg.Provider {
	case "", "ollama":
		log.Info("llm_provider_selected", slog.String("provider", "ollama"), slog.String("model", cfg.Model))
		return llm.NewOllamaClient(cfg.URL, cfg.Model, timeout, log, httpclient.NewPooledClient(timeout)), nil
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, timeout, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		log.Info("llm_provider_selected", slog.String("provider", "gemini"), slog.String("model", client.Version()))
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

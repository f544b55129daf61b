package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/logger"
	"welcomecraft/internal/infra/metrics"
)

const defaultSelectorMaxTokens = 2048

// SelectionResult is the outcome of one holistic selection.
type SelectionResult struct {
	Site     *domain.SiteDefinition
	Fallback bool
	Cached   bool
	Model    string
	// Reason explains why the fallback was used.
	Reason string
}

// HolisticSelector assembles a site definition from a candidate bundle in a single LLM call.
type HolisticSelector interface {
	Select(ctx context.Context, bundle *domain.AllCandidates) (*SelectionResult, error)
}

type holisticSelector struct {
	llmClient     domain.LLMClient
	promptBuilder SitePromptBuilder
	validator     SiteOutputValidator
	maxTokens     int
	limiter       *rate.Limiter
	cache         *expirable.LRU[string, domain.SiteDefinition]
	logger        *slog.Logger
}

// SelectorOption customizes the selector.
type SelectorOption func(*holisticSelector)

// WithSelectionCache enables an in-memory cache of successful selections.
// A size <= 0 disables caching.
func WithSelectionCache(size int, ttl time.Duration) SelectorOption {
	return func(s *holisticSelector) {
		if size > 0 {
			s.cache = expirable.NewLRU[string, domain.SiteDefinition](size, nil, ttl)
		}
	}
}

// WithRateLimiter throttles calls to the LLM.
func WithRateLimiter(l *rate.Limiter) SelectorOption {
	return func(s *holisticSelector) {
		s.limiter = l
	}
}

// WithSelectorMaxTokens sets the generation budget.
func WithSelectorMaxTokens(n int) SelectorOption {
	return func(s *holisticSelector) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// NewHolisticSelector creates a selector backed by llmClient.
func NewHolisticSelector(
	llmClient domain.LLMClient,
	promptBuilder SitePromptBuilder,
	validator SiteOutputValidator,
	log *slog.Logger,
	opts ...SelectorOption,
) HolisticSelector {
	s := &holisticSelector{
		llmClient:     llmClient,
		promptBuilder: promptBuilder,
		validator:     validator,
		maxTokens:     defaultSelectorMaxTokens,
		logger:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// selectionError tags a failure with the stage it happened in.
type selectionError struct {
	stage string
	err   error
}

func (e *selectionError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *selectionError) Unwrap() error { return e.err }

func (s *holisticSelector) Select(ctx context.Context, bundle *domain.AllCandidates) (*SelectionResult, error) {
	if bundle == nil {
		return nil, errors.New("candidate bundle is nil")
	}

	ctx, span := tracer.Start(ctx, "HolisticSelector.Select")
	defer span.End()
	ctx = logger.WithGenerationStage(ctx, "select")
	start := time.Now()
	model := s.llmClient.Version()

	key := ""
	useCache := s.cache != nil
	if useCache {
		var keyErr error
		key, keyErr = selectionCacheKey(model, bundle)
		if keyErr != nil {
			useCache = false
			s.logger.WarnContext(ctx, "site_selection_cache_key_failed", slog.String("error", keyErr.Error()))
		}
	}
	if useCache {
		if cached, ok := s.cache.Get(key); ok {
			metrics.RecordSelection(metrics.OutcomeCache, time.Since(start).Seconds())
			span.SetAttributes(attribute.String("wc.selection.outcome", metrics.OutcomeCache))
			s.logger.InfoContext(ctx, "site_selection_cache_hit")
			return &SelectionResult{Site: cloneSite(&cached), Cached: true, Model: model}, nil
		}
	}

	site, err := s.generate(ctx, bundle)
	if err != nil {
		stage := "unknown"
		var selErr *selectionError
		if errors.As(err, &selErr) {
			stage = selErr.stage
		}
		metrics.RecordFallback(stage)
		metrics.RecordSelection(metrics.OutcomeFallback, time.Since(start).Seconds())
		span.RecordError(err)
		span.SetAttributes(
			attribute.String("wc.selection.outcome", metrics.OutcomeFallback),
			attribute.String("wc.selection.fallback_stage", stage),
		)
		s.logger.WarnContext(ctx, "site_selection_fallback",
			slog.String("stage", stage),
			slog.String("error", err.Error()))
		return &SelectionResult{
			Site:     FallbackSite(bundle),
			Fallback: true,
			Model:    model,
			Reason:   err.Error(),
		}, nil
	}

	if useCache {
		s.cache.Add(key, *cloneSite(site))
	}

	metrics.RecordSelection(metrics.OutcomeLLM, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("wc.selection.outcome", metrics.OutcomeLLM))
	s.logger.InfoContext(ctx, "site_selection_completed",
		slog.String("model", model),
		slog.Int("blocks", len(site.Blocks)),
		slog.Int("filled_slots", site.FilledSlots()),
		slog.Duration("duration", time.Since(start)))

	return &SelectionResult{Site: site, Model: model}, nil
}

func (s *holisticSelector) generate(ctx context.Context, bundle *domain.AllCandidates) (*domain.SiteDefinition, error) {
	messages, err := s.promptBuilder.Build(bundle)
	if err != nil {
		return nil, &selectionError{stage: "prompt", err: err}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &selectionError{stage: "rate_limit", err: err}
		}
	}

	resp, err := s.llmClient.Chat(ctx, messages, domain.SiteDefinitionSchema(), s.maxTokens)
	if err != nil {
		return nil, &selectionError{stage: "llm", err: err}
	}
	if resp == nil {
		return nil, &selectionError{stage: "llm", err: errors.New("llm returned no response")}
	}

	site, report, err := s.validator.Validate(resp.Text, bundle)
	if err != nil {
		s.logger.DebugContext(ctx, "site_selection_raw_output", slog.String("raw_response", truncate(resp.Text, 500)))
		return nil, &selectionError{stage: "parse", err: err}
	}
	if len(report.UnknownBlocks)+len(report.DuplicateBlocks)+len(report.UnknownSlots)+len(report.RejectedRefs) > 0 {
		s.logger.WarnContext(ctx, "site_selection_output_normalized",
			slog.Any("unknown_blocks", report.UnknownBlocks),
			slog.Any("duplicate_blocks", report.DuplicateBlocks),
			slog.Any("unknown_slots", report.UnknownSlots),
			slog.Any("rejected_refs", report.RejectedRefs))
	}
	return site, nil
}

// FallbackSite builds a deterministic site: every block, every slot filled with
// its first candidate or left empty.
func FallbackSite(bundle *domain.AllCandidates) *domain.SiteDefinition {
	site := &domain.SiteDefinition{
		Theme:     domain.DefaultTheme,
		Blocks:    make([]domain.SiteBlock, 0, len(bundle.Blocks)),
		Reasoning: "Fallback selection: the first candidate of each slot was used.",
	}
	for _, b := range bundle.Blocks {
		block := domain.SiteBlock{Type: b.BlockType, Slots: make(map[string]domain.SlotFill, len(b.Slots))}
		for _, s := range b.Slots {
			fill := domain.SlotFill{}
			if len(s.Candidates) > 0 {
				fill.ArtifactID = s.Candidates[0].ArtifactID.String()
			}
			block.Slots[s.SlotName] = fill
		}
		site.Blocks = append(site.Blocks, block)
	}
	return site
}

// selectionCacheKey hashes the model with the encoded candidates.
// Callers skip the cache when the payload cannot be encoded.
func selectionCacheKey(model string, payload any) (string, error) {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	if err := json.NewEncoder(h).Encode(payload); err != nil {
		return "", fmt.Errorf("encode selection cache key: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func cloneSite(src *domain.SiteDefinition) *domain.SiteDefinition {
	dst := &domain.SiteDefinition{
		Theme:     src.Theme,
		Reasoning: src.Reasoning,
		Blocks:    make([]domain.SiteBlock, len(src.Blocks)),
	}
	for i, b := range src.Blocks {
		slots := make(map[string]domain.SlotFill, len(b.Slots))
		for k, v := range b.Slots {
			slots[k] = v
		}
		dst.Blocks[i] = domain.SiteBlock{Type: b.Type, Slots: slots}
	}
	return dst
}

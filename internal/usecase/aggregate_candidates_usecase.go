package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/logger"
	"welcomecraft/internal/infra/metrics"
)

const (
	defaultCandidateLimit    = 10
	maxCandidateLimit        = 10
	defaultAggregatorWorkers = 4
)

// AggregateInput scopes an aggregation to one user request.
type AggregateInput struct {
	UserID  string
	WorldID *string
	Prompt  string
}

// CandidateAggregator collects candidate artifacts for every block slot.
type CandidateAggregator interface {
	Execute(ctx context.Context, input AggregateInput) (*domain.AllCandidates, error)
}

type candidateAggregator struct {
	repo        domain.ArtifactRepository
	blocks      []domain.BlockDefinition
	limit       int
	concurrency int
	logger      *slog.Logger
}

// AggregatorOption customizes the aggregator.
type AggregatorOption func(*candidateAggregator)

// WithCandidateLimit caps the number of candidates fetched per slot.
// Values above 10 are clamped to 10.
func WithCandidateLimit(limit int) AggregatorOption {
	return func(a *candidateAggregator) {
		if limit > 0 {
			a.limit = min(limit, maxCandidateLimit)
		}
	}
}

// WithAggregatorConcurrency bounds the number of lookups in flight.
func WithAggregatorConcurrency(n int) AggregatorOption {
	return func(a *candidateAggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithBlocks overrides the block registry.
func WithBlocks(blocks []domain.BlockDefinition) AggregatorOption {
	return func(a *candidateAggregator) {
		a.blocks = blocks
	}
}

// NewCandidateAggregator creates an aggregator over the built-in block registry.
func NewCandidateAggregator(repo domain.ArtifactRepository, log *slog.Logger, opts ...AggregatorOption) CandidateAggregator {
	a := &candidateAggregator{
		repo:        repo,
		blocks:      domain.BlockRegistry(),
		limit:       defaultCandidateLimit,
		concurrency: defaultAggregatorWorkers,
		logger:      log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *candidateAggregator) Execute(ctx context.Context, input AggregateInput) (*domain.AllCandidates, error) {
	if input.UserID == "" {
		return nil, errors.New("user id is required")
	}

	ctx, span := tracer.Start(ctx, "CandidateAggregator.Execute")
	defer span.End()
	ctx = logger.WithGenerationStage(ctx, "aggregate")
	start := time.Now()

	bundle := &domain.AllCandidates{
		Blocks:     make([]domain.BlockCandidates, len(a.blocks)),
		UserPrompt: input.Prompt,
	}
	for bi, block := range a.blocks {
		bundle.Blocks[bi] = domain.BlockCandidates{
			BlockType: block.Type,
			Slots:     make([]domain.SlotCandidates, len(block.Slots)),
		}
	}

	// Each goroutine owns exactly one (block, slot) cell, so results keep registry order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for bi, block := range a.blocks {
		for si, slot := range block.Slots {
			g.Go(func() error {
				candidates, err := a.repo.ListCandidates(gctx, domain.CandidateQuery{
					UserID:  input.UserID,
					WorldID: input.WorldID,
					Kinds:   slot.Definition.Kinds,
					Limit:   a.limit,
					Offset:  0,
				})
				if err != nil {
					return fmt.Errorf("failed to list candidates for %s.%s: %w", block.Type, slot.Name, err)
				}
				if candidates == nil {
					candidates = []domain.ArtifactCandidate{}
				}
				bundle.Blocks[bi].Slots[si] = domain.SlotCandidates{
					SlotName:       slot.Name,
					SlotDefinition: slot.Definition,
					Candidates:     candidates,
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregation failed")
		a.logger.ErrorContext(ctx, "candidate_aggregation_failed", slog.String("error", err.Error()))
		return nil, err
	}

	for _, b := range bundle.Blocks {
		for _, s := range b.Slots {
			bundle.TotalArtifacts += len(s.Candidates)
		}
	}

	metrics.RecordCandidates(bundle.TotalArtifacts)
	span.SetAttributes(
		attribute.Int("wc.blocks", len(bundle.Blocks)),
		attribute.Int("wc.candidates", bundle.TotalArtifacts),
	)
	a.logger.InfoContext(ctx, "candidates_aggregated",
		slog.Int("blocks", len(bundle.Blocks)),
		slog.Int("total_artifacts", bundle.TotalArtifacts),
		slog.Duration("duration", time.Since(start)))

	return bundle, nil
}

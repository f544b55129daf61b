package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type mockArtifactRepo struct {
	mock.Mock
}

func (m *mockArtifactRepo) ListCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.ArtifactCandidate, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArtifactCandidate), args.Error(1)
}

func (m *mockArtifactRepo) Create(ctx context.Context, artifact *domain.Artifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *mockArtifactRepo) GetLatest(ctx context.Context, id uuid.UUID, userID string, worldID *string) (*domain.Artifact, error) {
	args := m.Called(ctx, id, userID, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

func (m *mockArtifactRepo) SoftDelete(ctx context.Context, id uuid.UUID, userID string, worldID *string) error {
	args := m.Called(ctx, id, userID, worldID)
	return args.Error(0)
}

type mockPublicationRepo struct {
	mock.Mock
}

func (m *mockPublicationRepo) Publish(ctx context.Context, p *domain.Publication) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPublicationRepo) Revoke(ctx context.Context, artifactID uuid.UUID, userID string, at time.Time) error {
	args := m.Called(ctx, artifactID, userID, at)
	return args.Error(0)
}

func (m *mockPublicationRepo) GetPublishedArtifact(ctx context.Context, artifactID uuid.UUID, at time.Time) (*domain.Artifact, error) {
	args := m.Called(ctx, artifactID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifact), args.Error(1)
}

type mockGenerationRepo struct {
	mock.Mock
}

func (m *mockGenerationRepo) Record(ctx context.Context, g *domain.SiteGeneration) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Chat(ctx context.Context, messages []domain.Message, format *domain.Schema, maxTokens int) (*domain.LLMResponse, error) {
	args := m.Called(ctx, messages, format, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *mockLLMClient) Version() string {
	return "mock-model"
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) Execute(ctx context.Context, input usecase.AggregateInput) (*domain.AllCandidates, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllCandidates), args.Error(1)
}

type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) Select(ctx context.Context, bundle *domain.AllCandidates) (*usecase.SelectionResult, error) {
	args := m.Called(ctx, bundle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SelectionResult), args.Error(1)
}

// fakeTxManager runs fn inline and records whether it was used.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func kindsEqual(kinds ...domain.ArtifactKind) interface{} {
	return mock.MatchedBy(func(q domain.CandidateQuery) bool {
		return slices.Equal(q.Kinds, kinds)
	})
}

// testBundle returns a two-block bundle with one candidate per filled slot.
func testBundle() (*domain.AllCandidates, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"heading":  uuid.New(),
		"contacts": uuid.New(),
		"other":    uuid.New(),
	}
	bundle := &domain.AllCandidates{
		Blocks: []domain.BlockCandidates{
			{
				BlockType: "hero",
				Slots: []domain.SlotCandidates{
					{SlotName: "heading", SlotDefinition: domain.SlotDefinition{Kinds: []domain.ArtifactKind{domain.KindText}}, Candidates: []domain.ArtifactCandidate{
						{ArtifactID: ids["heading"], Title: "Welcome aboard", Kind: domain.KindText},
						{ArtifactID: ids["other"], Title: "Hello team", Kind: domain.KindText},
					}},
					{SlotName: "subheading", SlotDefinition: domain.SlotDefinition{Kinds: []domain.ArtifactKind{domain.KindText}}, Candidates: []domain.ArtifactCandidate{}},
				},
			},
			{
				BlockType: "key-contacts",
				Slots: []domain.SlotCandidates{
					{SlotName: "title", SlotDefinition: domain.SlotDefinition{Kinds: []domain.ArtifactKind{domain.KindText}}, Candidates: []domain.ArtifactCandidate{}},
					{SlotName: "contacts", SlotDefinition: domain.SlotDefinition{Kinds: []domain.ArtifactKind{domain.KindPerson}}, Candidates: []domain.ArtifactCandidate{
						{ArtifactID: ids["contacts"], Title: "Ana Souza", Summary: "Engineering manager", Kind: domain.KindPerson},
					}},
				},
			},
		},
		TotalArtifacts: 3,
		UserPrompt:     "new backend engineer",
	}
	return bundle, ids
}

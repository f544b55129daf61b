package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/usecase"
)

func TestCandidateAggregator_FollowsRegistryOrder(t *testing.T) {
	repo := new(mockArtifactRepo)
	personID := uuid.New()
	linkID := uuid.New()

	repo.On("ListCandidates", mock.Anything, kindsEqual(domain.KindPerson)).
		Return([]domain.ArtifactCandidate{{ArtifactID: personID, Title: "Ana", Kind: domain.KindPerson}}, nil)
	repo.On("ListCandidates", mock.Anything, kindsEqual(domain.KindLink)).
		Return([]domain.ArtifactCandidate{{ArtifactID: linkID, Title: "Wiki", Kind: domain.KindLink}}, nil)
	repo.On("ListCandidates", mock.Anything, mock.Anything).Return(nil, nil)

	agg := usecase.NewCandidateAggregator(repo, discardLogger())
	bundle, err := agg.Execute(context.Background(), usecase.AggregateInput{UserID: "alice", Prompt: "onboarding"})
	require.NoError(t, err)

	require.Len(t, bundle.Blocks, len(domain.BlockRegistry()))
	for i, def := range domain.BlockRegistry() {
		block := bundle.Blocks[i]
		assert.Equal(t, def.Type, block.BlockType)
		require.Len(t, block.Slots, len(def.Slots))
		for j, slot := range def.Slots {
			assert.Equal(t, slot.Name, block.Slots[j].SlotName)
			assert.Equal(t, slot.Definition, block.Slots[j].SlotDefinition)
			assert.NotNil(t, block.Slots[j].Candidates)
		}
	}

	contacts, ok := bundle.Blocks[1].Slot("contacts")
	require.True(t, ok)
	assert.True(t, contacts.Contains(personID.String()))
	links, ok := bundle.Blocks[2].Slot("links")
	require.True(t, ok)
	assert.True(t, links.Contains(linkID.String()))

	assert.Equal(t, 2, bundle.TotalArtifacts)
	assert.Equal(t, "onboarding", bundle.UserPrompt)
}

func TestCandidateAggregator_PassesScopeAndLimit(t *testing.T) {
	repo := new(mockArtifactRepo)
	world := "staging"

	repo.On("ListCandidates", mock.Anything, mock.MatchedBy(func(q domain.CandidateQuery) bool {
		return q.UserID == "alice" && q.WorldID != nil && *q.WorldID == world && q.Limit == 3 && q.Offset == 0
	})).Return([]domain.ArtifactCandidate{}, nil)

	agg := usecase.NewCandidateAggregator(repo, discardLogger(),
		usecase.WithCandidateLimit(3),
		usecase.WithAggregatorConcurrency(1),
	)
	bundle, err := agg.Execute(context.Background(), usecase.AggregateInput{UserID: "alice", WorldID: &world})
	require.NoError(t, err)
	assert.Equal(t, 0, bundle.TotalArtifacts)

	slots := 0
	for _, def := range domain.BlockRegistry() {
		slots += len(def.Slots)
	}
	repo.AssertNumberOfCalls(t, "ListCandidates", slots)
}

func TestCandidateAggregator_LimitIsCappedAtTen(t *testing.T) {
	repo := new(mockArtifactRepo)
	repo.On("ListCandidates", mock.Anything, mock.MatchedBy(func(q domain.CandidateQuery) bool {
		return q.Limit == 10
	})).Return([]domain.ArtifactCandidate{}, nil)

	agg := usecase.NewCandidateAggregator(repo, discardLogger(),
		usecase.WithCandidateLimit(50),
		usecase.WithAggregatorConcurrency(1),
	)
	_, err := agg.Execute(context.Background(), usecase.AggregateInput{UserID: "alice"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCandidateAggregator_CustomBlocks(t *testing.T) {
	repo := new(mockArtifactRepo)
	repo.On("ListCandidates", mock.Anything, kindsEqual(domain.KindFAQItem)).
		Return([]domain.ArtifactCandidate{{ArtifactID: uuid.New(), Kind: domain.KindFAQItem}}, nil)

	faq, ok := domain.LookupBlock("faq")
	require.True(t, ok)
	faq.Slots = faq.Slots[1:]

	agg := usecase.NewCandidateAggregator(repo, discardLogger(), usecase.WithBlocks([]domain.BlockDefinition{faq}))
	bundle, err := agg.Execute(context.Background(), usecase.AggregateInput{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, bundle.Blocks, 1)
	assert.Equal(t, "faq", bundle.Blocks[0].BlockType)
	assert.Equal(t, 1, bundle.TotalArtifacts)
}

func TestCandidateAggregator_RepositoryError(t *testing.T) {
	repo := new(mockArtifactRepo)
	dbErr := errors.New("connection refused")
	repo.On("ListCandidates", mock.Anything, kindsEqual(domain.KindPerson)).Return(nil, dbErr)
	repo.On("ListCandidates", mock.Anything, mock.Anything).Return([]domain.ArtifactCandidate{}, nil).Maybe()

	agg := usecase.NewCandidateAggregator(repo, discardLogger())
	bundle, err := agg.Execute(context.Background(), usecase.AggregateInput{UserID: "alice"})
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "key-contacts.contacts")
}

func TestCandidateAggregator_RequiresUser(t *testing.T) {
	repo := new(mockArtifactRepo)
	agg := usecase.NewCandidateAggregator(repo, discardLogger())

	_, err := agg.Execute(context.Background(), usecase.AggregateInput{})
	require.Error(t, err)
	repo.AssertNotCalled(t, "ListCandidates", mock.Anything, mock.Anything)
}

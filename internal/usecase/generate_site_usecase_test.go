package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/usecase"
)

type generateFixture struct {
	aggregator *mockAggregator
	selector   *mockSelector
	artifacts  *mockArtifactRepo
	generation *mockGenerationRepo
	tx         *fakeTxManager
	uc         usecase.GenerateSiteUsecase
}

func newGenerateFixture() *generateFixture {
	f := &generateFixture{
		aggregator: new(mockAggregator),
		selector:   new(mockSelector),
		artifacts:  new(mockArtifactRepo),
		generation: new(mockGenerationRepo),
		tx:         &fakeTxManager{},
	}
	f.uc = usecase.NewGenerateSiteUsecase(f.aggregator, f.selector, f.artifacts, f.generation, f.tx, discardLogger())
	return f
}

func TestGenerateSite_PersistsArtifactAndRecord(t *testing.T) {
	f := newGenerateFixture()
	bundle, _ := testBundle()
	world := "staging"
	site := usecase.FallbackSite(bundle)

	f.aggregator.On("Execute", mock.Anything, usecase.AggregateInput{UserID: "alice", WorldID: &world, Prompt: "new backend engineer"}).
		Return(bundle, nil)
	f.selector.On("Select", mock.Anything, bundle).
		Return(&usecase.SelectionResult{Site: site, Model: "gemma3:12b"}, nil)

	var stored *domain.Artifact
	f.artifacts.On("Create", mock.Anything, mock.AnythingOfType("*domain.Artifact")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Artifact) }).
		Return(nil)
	var record *domain.SiteGeneration
	f.generation.On("Record", mock.Anything, mock.AnythingOfType("*domain.SiteGeneration")).
		Run(func(args mock.Arguments) { record = args.Get(1).(*domain.SiteGeneration) }).
		Return(nil)

	out, err := f.uc.Execute(context.Background(), usecase.GenerateSiteInput{
		UserID:  "alice",
		WorldID: &world,
		Prompt:  "  new backend engineer ",
		Title:   "Backend welcome",
	})
	require.NoError(t, err)
	require.NotNil(t, out.ArtifactID)
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, 3, out.TotalCandidates)
	assert.Equal(t, "gemma3:12b", out.Model)

	require.NotNil(t, stored)
	assert.Equal(t, *out.ArtifactID, stored.ID)
	assert.Equal(t, domain.KindSite, stored.Kind)
	assert.Equal(t, "Backend welcome", stored.Title)
	assert.Equal(t, &world, stored.WorldID)
	assert.Contains(t, stored.Summary, "2 blocks")

	var decoded domain.SiteDefinition
	require.NoError(t, json.Unmarshal([]byte(stored.Content), &decoded))
	assert.Equal(t, *site, decoded)

	require.NotNil(t, record)
	assert.Equal(t, stored.ID, record.ArtifactID)
	assert.Equal(t, "new backend engineer", record.Prompt)
	assert.Equal(t, "gemma3:12b", record.Model)
	assert.False(t, record.Fallback)
	assert.Equal(t, stored.CreatedAt, record.CreatedAt)
}

func TestGenerateSite_DefaultTitle(t *testing.T) {
	f := newGenerateFixture()
	bundle, _ := testBundle()

	f.aggregator.On("Execute", mock.Anything, mock.Anything).Return(bundle, nil)
	f.selector.On("Select", mock.Anything, bundle).
		Return(&usecase.SelectionResult{Site: usecase.FallbackSite(bundle), Fallback: true, Reason: "llm: timeout"}, nil)
	f.artifacts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Artifact) bool {
		return a.Title == "Onboarding site"
	})).Return(nil)
	f.generation.On("Record", mock.Anything, mock.MatchedBy(func(g *domain.SiteGeneration) bool {
		return g.Fallback
	})).Return(nil)

	out, err := f.uc.Execute(context.Background(), usecase.GenerateSiteInput{UserID: "alice"})
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, "llm: timeout", out.Reason)
	f.artifacts.AssertExpectations(t)
	f.generation.AssertExpectations(t)
}

func TestGenerateSite_DryRunSkipsPersistence(t *testing.T) {
	f := newGenerateFixture()
	bundle, _ := testBundle()

	f.aggregator.On("Execute", mock.Anything, mock.Anything).Return(bundle, nil)
	f.selector.On("Select", mock.Anything, bundle).Return(&usecase.SelectionResult{Site: usecase.FallbackSite(bundle)}, nil)

	out, err := f.uc.Execute(context.Background(), usecase.GenerateSiteInput{UserID: "alice", DryRun: true})
	require.NoError(t, err)
	assert.Nil(t, out.ArtifactID)
	assert.NotNil(t, out.Site)
	assert.Equal(t, 0, f.tx.calls)
	f.artifacts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateSite_Errors(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		f := newGenerateFixture()
		_, err := f.uc.Execute(context.Background(), usecase.GenerateSiteInput{Prompt: "x"})
		require.Error(t, err)
		f.aggregator.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("aggregation", func(t *testing.T) {
		f := newGenerateFixture()
		aggErr := errors.New("db down")
		f.aggregator.On("Execute", mock.Anything, mock.Anything).Return(nil, aggErr)

		_, err := f.uc.Execute(context.Background(), usecase.GenerateSiteInput{UserID: "alice"})
		require.ErrorIs(t, err, aggErr)
		assert.Contains(t, err.Error(), "failed to aggregate candidates")
	})

	t.Run("persistence", func(t *testing.T) {
		f := newGenerateFixture()
		bundle, _ := testBundle()
		writeErr := errors.New("unique violation")
		f.aggregator.On("Execute", mock.Anything, mock.Anything).Return(bundle, nil)
		f.selector.On("Select", mock.Anything, bundle).Return(&usecase.SelectionResult{Site: usecase.FallbackSite(bundle)}, nil)
		f.artifacts.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.generation.On("Record", mock.Anything, mock.Anything).Return(writeErr)

		out, err := f.uc.Execute(context.Background(), usecase.GenerateSiteInput{UserID: "alice"})
		require.ErrorIs(t, err, writeErr)
		assert.Nil(t, out)
		assert.Contains(t, err.Error(), "failed to persist site artifact")
	})
}

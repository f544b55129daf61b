package usecase

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welcomecraft/internal/domain"
)

func validatorBundle() (*domain.AllCandidates, uuid.UUID, uuid.UUID) {
	text := uuid.New()
	person := uuid.New()
	return &domain.AllCandidates{
		Blocks: []domain.BlockCandidates{
			{BlockType: "hero", Slots: []domain.SlotCandidates{
				{SlotName: "heading", Candidates: []domain.ArtifactCandidate{{ArtifactID: text, Kind: domain.KindText}}},
				{SlotName: "subheading", Candidates: []domain.ArtifactCandidate{}},
			}},
			{BlockType: "key-contacts", Slots: []domain.SlotCandidates{
				{SlotName: "title", Candidates: []domain.ArtifactCandidate{}},
				{SlotName: "contacts", Candidates: []domain.ArtifactCandidate{{ArtifactID: person, Kind: domain.KindPerson}}},
			}},
		},
		TotalArtifacts: 2,
	}, text, person
}

func TestSiteOutputValidator_Validate(t *testing.T) {
	bundle, text, person := validatorBundle()
	raw := fmt.Sprintf("Here is the site:\n```json\n"+`{"theme":"  warm ","blocks":[
		{"type":"hero","slots":[{"slotName":"heading","artifactId":" %s "}]},
		{"type":"key-contacts","slots":[{"slotName":"contacts","artifactId":%q}]}
	],"reasoning":" fits "}`+"\n```", text, person)

	site, report, err := NewSiteOutputValidator().Validate(raw, bundle)
	require.NoError(t, err)
	assert.Equal(t, "warm", site.Theme)
	assert.Equal(t, "fits", site.Reasoning)
	require.Len(t, site.Blocks, 2)
	assert.Equal(t, text.String(), site.Blocks[0].Slots["heading"].ArtifactID)
	assert.Equal(t, domain.SlotFill{}, site.Blocks[0].Slots["subheading"])
	assert.Equal(t, person.String(), site.Blocks[1].Slots["contacts"].ArtifactID)
	assert.Empty(t, report.RejectedRefs)
	assert.Empty(t, report.UnknownBlocks)
}

func TestSiteOutputValidator_Normalizes(t *testing.T) {
	bundle, text, person := validatorBundle()
	raw := fmt.Sprintf(`{"theme":"","blocks":[
		{"type":"hero","slots":[{"slotName":"heading","artifactId":%q},{"slotName":"heading","artifactId":%q},{"slotName":"footer","artifactId":""}]},
		{"type":"hero","slots":[]},
		{"type":"gallery","slots":[]},
		{"type":"key-contacts","slots":[{"slotName":"contacts","artifactId":"not-a-candidate"}]}
	],"reasoning":""}`, text, person)

	site, report, err := NewSiteOutputValidator().Validate(raw, bundle)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTheme, site.Theme)
	require.Len(t, site.Blocks, 2)
	// first valid reference wins, later ones for the same slot are ignored
	assert.Equal(t, text.String(), site.Blocks[0].Slots["heading"].ArtifactID)
	assert.Equal(t, "", site.Blocks[1].Slots["contacts"].ArtifactID)

	assert.Equal(t, []string{"gallery"}, report.UnknownBlocks)
	assert.Equal(t, []string{"hero"}, report.DuplicateBlocks)
	assert.Equal(t, []string{"hero.footer"}, report.UnknownSlots)
	assert.Equal(t, []string{"key-contacts.contacts=not-a-candidate"}, report.RejectedRefs)
}

func TestSiteOutputValidator_Errors(t *testing.T) {
	bundle, _, _ := validatorBundle()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "   ", want: "llm response is empty"},
		{name: "no object", raw: "sorry", want: "no JSON object found in response"},
		{name: "truncated", raw: `{"theme":"x","blocks":[`, want: "incomplete JSON object"},
		{name: "wrong shape", raw: `{"blocks":"hero"}`, want: "failed to parse llm response"},
		{name: "no blocks", raw: `{"theme":"x"}`, want: "llm response contains no blocks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, _, err := NewSiteOutputValidator().Validate(tt.raw, bundle)
			require.Error(t, err)
			assert.Nil(t, site)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "prose around", in: `Sure! {"a":{"b":2}} Hope this helps.`, want: `{"a":{"b":2}}`},
		{name: "braces in strings", in: `{"a":"}{","b":"\"}"}`, want: `{"a":"}{","b":"\"}"}`},
		{name: "first of two", in: `{"a":1}{"b":2}`, want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ようこ...", truncate("ようこそチーム", 3))
}

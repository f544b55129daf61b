package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockRegistry_StableOrderAndValidKinds(t *testing.T) {
	blocks := BlockRegistry()
	require.NotEmpty(t, blocks)

	assert.Equal(t, []string{"hero", "key-contacts", "useful-links", "faq", "office-locations"}, BlockTypes())

	seen := make(map[string]struct{})
	for _, b := range blocks {
		_, dup := seen[b.Type]
		assert.False(t, dup, "duplicate block type %s", b.Type)
		seen[b.Type] = struct{}{}

		require.NotEmpty(t, b.Slots, "block %s has no slots", b.Type)
		for _, s := range b.Slots {
			require.NotEmpty(t, s.Definition.Kinds, "slot %s.%s has no kinds", b.Type, s.Name)
			for _, k := range s.Definition.Kinds {
				assert.True(t, k.Valid(), "slot %s.%s uses unknown kind %s", b.Type, s.Name, k)
			}
		}
	}
}

func TestBlockRegistry_ReturnsCopy(t *testing.T) {
	blocks := BlockRegistry()
	blocks[0].Type = "mutated"

	_, ok := LookupBlock("hero")
	assert.True(t, ok)
}

func TestLookupBlock(t *testing.T) {
	b, ok := LookupBlock("faq")
	require.True(t, ok)

	slot, ok := b.Slot("items")
	require.True(t, ok)
	assert.Equal(t, []ArtifactKind{KindFAQItem}, slot.Kinds)

	_, ok = b.Slot("missing")
	assert.False(t, ok)

	_, ok = LookupBlock("unknown")
	assert.False(t, ok)
}

func TestParseArtifactKind(t *testing.T) {
	k, err := ParseArtifactKind(" FAQ-Item ")
	require.NoError(t, err)
	assert.Equal(t, KindFAQItem, k)

	_, err = ParseArtifactKind("video")
	assert.Error(t, err)
}

func TestNormalizeWorldID(t *testing.T) {
	assert.Nil(t, NormalizeWorldID("   "))
	w := NormalizeWorldID(" ENTERPRISE_ONBOARDING ")
	require.NotNil(t, w)
	assert.Equal(t, "ENTERPRISE_ONBOARDING", *w)
}

func TestSlotCandidates_Contains(t *testing.T) {
	id := uuid.New()
	slot := SlotCandidates{Candidates: []ArtifactCandidate{{ArtifactID: id}}}

	assert.True(t, slot.Contains(id.String()))
	assert.False(t, slot.Contains(uuid.NewString()))
	assert.False(t, slot.Contains(""))
}

func TestSiteDefinition_FilledSlots(t *testing.T) {
	site := SiteDefinition{Blocks: []SiteBlock{
		{Type: "hero", Slots: map[string]SlotFill{"heading": {ArtifactID: "a"}, "subheading": {}}},
		{Type: "faq", Slots: map[string]SlotFill{"items": {ArtifactID: "b"}}},
	}}
	assert.Equal(t, 2, site.FilledSlots())
}

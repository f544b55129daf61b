package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"welcomecraft/internal/domain"
)

// SitePromptBuilder turns a candidate bundle into chat messages for the selector.
type SitePromptBuilder interface {
	Build(bundle *domain.AllCandidates) ([]domain.Message, error)
}

type sitePromptBuilder struct {
	locale string
}

// NewSitePromptBuilder creates a builder. A non-empty locale is added as a language hint.
func NewSitePromptBuilder(locale string) SitePromptBuilder {
	return &sitePromptBuilder{locale: locale}
}

func (b *sitePromptBuilder) Build(bundle *domain.AllCandidates) ([]domain.Message, error) {
	if bundle == nil {
		return nil, errors.New("candidate bundle is nil")
	}

	var sys strings.Builder
	sys.WriteString("You are an onboarding site designer. You assemble a welcome site for a new team member\n")
	sys.WriteString("from content the user already created.\n\n")

	sys.WriteString("### Task\n")
	sys.WriteString("Choose which blocks to include, in which order, and fill each slot with at most one artifact.\n\n")

	sys.WriteString("### Blocks\n")
	for _, block := range bundle.Blocks {
		def, ok := domain.LookupBlock(block.BlockType)
		if ok {
			sys.WriteString(fmt.Sprintf("- %s: %s\n", block.BlockType, def.Description))
		} else {
			sys.WriteString(fmt.Sprintf("- %s\n", block.BlockType))
		}
		for _, slot := range block.Slots {
			kinds := make([]string, len(slot.SlotDefinition.Kinds))
			for i, k := range slot.SlotDefinition.Kinds {
				kinds[i] = string(k)
			}
			sys.WriteString(fmt.Sprintf("  - slot %q (kinds: %s): %s\n",
				slot.SlotName, strings.Join(kinds, ", "), slot.SlotDefinition.Description))
		}
	}
	sys.WriteString("\n")

	sys.WriteString("### Rules\n")
	sys.WriteString("1. Use only artifactId values listed as candidates of the same slot.\n")
	sys.WriteString("2. Leave artifactId empty when no candidate fits the request.\n")
	sys.WriteString("3. Skip blocks that would stay completely empty.\n")
	sys.WriteString("4. Prefer artifacts whose title and summary match the user's request.\n")
	sys.WriteString("5. Pick a short theme name and explain the choice in reasoning.\n")
	sys.WriteString("6. Output MUST be valid JSON.\n\n")

	sys.WriteString("### Response Format\n")
	sys.WriteString("```json\n")
	sys.WriteString("{\n")
	sys.WriteString("  \"theme\": \"default\",\n")
	sys.WriteString("  \"blocks\": [\n")
	sys.WriteString("    {\"type\": \"hero\", \"slots\": [{\"slotName\": \"heading\", \"artifactId\": \"...\"}]}\n")
	sys.WriteString("  ],\n")
	sys.WriteString("  \"reasoning\": \"...\"\n")
	sys.WriteString("}\n")
	sys.WriteString("```\n")

	candidatesJSON, err := json.MarshalIndent(bundle.Blocks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize candidates: %w", err)
	}

	var user strings.Builder
	user.WriteString(fmt.Sprintf("### Candidates (%d artifacts)\n", bundle.TotalArtifacts))
	user.WriteString("```json\n")
	user.Write(candidatesJSON)
	user.WriteString("\n```\n\n")
	user.WriteString("### User Request\n")
	if strings.TrimSpace(bundle.UserPrompt) == "" {
		user.WriteString("(no specific request, build a balanced onboarding site)")
	} else {
		user.WriteString(bundle.UserPrompt)
	}
	if b.locale != "" {
		user.WriteString(fmt.Sprintf("\n(Preferred Language: %s)", b.locale))
	}

	return []domain.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: user.String()},
	}, nil
}

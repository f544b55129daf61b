package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"welcomecraft/internal/domain"
)

// SiteOutputValidator parses the selector's JSON and enforces slot invariants.
type SiteOutputValidator struct{}

// NewSiteOutputValidator creates a validator instance (currently stateless).
func NewSiteOutputValidator() SiteOutputValidator {
	return SiteOutputValidator{}
}

// llmSiteDefinition mirrors domain.SiteDefinitionSchema.
type llmSiteDefinition struct {
	Theme  string `json:"theme"`
	Blocks []struct {
		Type  string `json:"type"`
		Slots []struct {
			SlotName   string `json:"slotName"`
			ArtifactID string `json:"artifactId"`
		} `json:"slots"`
	} `json:"blocks"`
	Reasoning string `json:"reasoning"`
}

// ValidationReport lists what was discarded while normalizing the output.
type ValidationReport struct {
	UnknownBlocks   []string
	DuplicateBlocks []string
	UnknownSlots    []string
	RejectedRefs    []string
}

// Validate parses raw model output into a site definition.
// Unknown blocks and slots are dropped; references outside a slot's candidates are cleared.
// It fails only when nothing usable remains.
func (v SiteOutputValidator) Validate(raw string, bundle *domain.AllCandidates) (*domain.SiteDefinition, ValidationReport, error) {
	var report ValidationReport

	jsonStr, err := extractJSONObject(raw)
	if err != nil {
		return nil, report, err
	}

	var parsed llmSiteDefinition
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, report, fmt.Errorf("failed to parse llm response: %w", err)
	}
	if len(parsed.Blocks) == 0 {
		return nil, report, errors.New("llm response contains no blocks")
	}

	site := &domain.SiteDefinition{
		Theme:     strings.TrimSpace(parsed.Theme),
		Blocks:    make([]domain.SiteBlock, 0, len(parsed.Blocks)),
		Reasoning: strings.TrimSpace(parsed.Reasoning),
	}
	if site.Theme == "" {
		site.Theme = domain.DefaultTheme
	}

	seen := make(map[string]struct{}, len(parsed.Blocks))
	for _, pb := range parsed.Blocks {
		candidates, ok := bundle.Block(pb.Type)
		if !ok {
			report.UnknownBlocks = append(report.UnknownBlocks, pb.Type)
			continue
		}
		if _, dup := seen[pb.Type]; dup {
			report.DuplicateBlocks = append(report.DuplicateBlocks, pb.Type)
			continue
		}
		seen[pb.Type] = struct{}{}

		block := domain.SiteBlock{Type: pb.Type, Slots: make(map[string]domain.SlotFill, len(candidates.Slots))}
		for _, s := range candidates.Slots {
			block.Slots[s.SlotName] = domain.SlotFill{}
		}
		for _, ps := range pb.Slots {
			slot, ok := candidates.Slot(ps.SlotName)
			if !ok {
				report.UnknownSlots = append(report.UnknownSlots, pb.Type+"."+ps.SlotName)
				continue
			}
			id := strings.TrimSpace(ps.ArtifactID)
			if id == "" || block.Slots[ps.SlotName].ArtifactID != "" {
				continue
			}
			if !slot.Contains(id) {
				report.RejectedRefs = append(report.RejectedRefs, pb.Type+"."+ps.SlotName+"="+id)
				continue
			}
			block.Slots[ps.SlotName] = domain.SlotFill{ArtifactID: id}
		}
		site.Blocks = append(site.Blocks, block)
	}

	if len(site.Blocks) == 0 {
		return nil, report, errors.New("llm response references no known blocks")
	}
	return site, report, nil
}

// extractJSONObject returns the first balanced JSON object in text,
// tolerating code fences and prose around it.
func extractJSONObject(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", errors.New("llm response is empty")
	}

	start := strings.IndexByte(trimmed, '{')
	if start == -1 {
		return "", errors.New("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(trimmed); i++ {
		c := trimmed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return trimmed[start : i+1], nil
			}
		}
	}
	return "", errors.New("incomplete JSON object")
}

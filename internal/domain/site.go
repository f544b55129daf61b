package domain

// SlotFill references the artifact placed into a slot.
// An empty ArtifactID leaves the slot unfilled.
type SlotFill struct {
	ArtifactID string `json:"artifactId"`
}

// SiteBlock is one rendered block of a generated site.
type SiteBlock struct {
	Type  string              `json:"type"`
	Slots map[string]SlotFill `json:"slots"`
}

// SiteDefinition is the content stored in a "site" artifact.
type SiteDefinition struct {
	Theme     string      `json:"theme"`
	Blocks    []SiteBlock `json:"blocks"`
	Reasoning string      `json:"reasoning"`
}

// DefaultTheme is used whenever no theme was chosen.
const DefaultTheme = "default"

// SlotCandidates holds the artifacts that may fill one slot.
type SlotCandidates struct {
	SlotName       string              `json:"slotName"`
	SlotDefinition SlotDefinition      `json:"slotDefinition"`
	Candidates     []ArtifactCandidate `json:"candidates"`
}

// BlockCandidates groups slot candidates for one block type.
type BlockCandidates struct {
	BlockType string           `json:"blockType"`
	Slots     []SlotCandidates `json:"slots"`
}

// AllCandidates is the request-scoped bundle handed to the selector.
type AllCandidates struct {
	Blocks         []BlockCandidates `json:"blocks"`
	TotalArtifacts int               `json:"totalArtifacts"`
	UserPrompt     string            `json:"userPrompt"`
}

// Block returns the candidates aggregated for blockType.
func (a *AllCandidates) Block(blockType string) (BlockCandidates, bool) {
	for _, b := range a.Blocks {
		if b.BlockType == blockType {
			return b, true
		}
	}
	return BlockCandidates{}, false
}

// Slot returns the candidates of one slot inside the block.
func (b BlockCandidates) Slot(name string) (SlotCandidates, bool) {
	for _, s := range b.Slots {
		if s.SlotName == name {
			return s, true
		}
	}
	return SlotCandidates{}, false
}

// Contains reports whether artifactID is one of the slot's candidates.
func (s SlotCandidates) Contains(artifactID string) bool {
	for _, c := range s.Candidates {
		if c.ArtifactID.String() == artifactID {
			return true
		}
	}
	return false
}

// FilledSlots counts slots holding an artifact reference.
func (d *SiteDefinition) FilledSlots() int {
	n := 0
	for _, b := range d.Blocks {
		for _, fill := range b.Slots {
			if fill.ArtifactID != "" {
				n++
			}
		}
	}
	return n
}

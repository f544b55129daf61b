package domain

// SlotDefinition describes which artifacts may fill a placement inside a block.
type SlotDefinition struct {
	Kinds       []ArtifactKind `json:"kinds"`
	Tags        []string       `json:"tags,omitempty"`
	Description string         `json:"description"`
}

// BlockSlot pairs a slot name with its definition, keeping declaration order.
type BlockSlot struct {
	Name       string
	Definition SlotDefinition
}

// BlockDefinition is a site-block template with ordered slots.
type BlockDefinition struct {
	Type        string
	Title       string
	Description string
	Slots       []BlockSlot
}

// Slot returns the slot with the given name.
func (b BlockDefinition) Slot(name string) (SlotDefinition, bool) {
	for _, s := range b.Slots {
		if s.Name == name {
			return s.Definition, true
		}
	}
	return SlotDefinition{}, false
}

var blockRegistry = []BlockDefinition{
	{
		Type:        "hero",
		Title:       "Hero",
		Description: "Opening section that greets the new team member.",
		Slots: []BlockSlot{
			{Name: "heading", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindText},
				Tags:        []string{"hero", "heading"},
				Description: "Short welcome heading.",
			}},
			{Name: "subheading", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindText},
				Tags:        []string{"hero", "subheading"},
				Description: "One or two sentences introducing the onboarding.",
			}},
		},
	},
	{
		Type:        "key-contacts",
		Title:       "Key contacts",
		Description: "People the newcomer should reach out to first.",
		Slots: []BlockSlot{
			{Name: "title", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindText},
				Tags:        []string{"contacts", "title"},
				Description: "Section title for the contacts block.",
			}},
			{Name: "contacts", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindPerson},
				Tags:        []string{"contact", "team"},
				Description: "Person card of the main contact (manager, buddy, HR).",
			}},
		},
	},
	{
		Type:        "useful-links",
		Title:       "Useful links",
		Description: "Links to tools and resources used from day one.",
		Slots: []BlockSlot{
			{Name: "title", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindText},
				Tags:        []string{"links", "title"},
				Description: "Section title for the links block.",
			}},
			{Name: "links", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindLink},
				Tags:        []string{"link", "resource"},
				Description: "Most important link for getting started.",
			}},
		},
	},
	{
		Type:        "faq",
		Title:       "FAQ",
		Description: "Answers to the questions newcomers ask most.",
		Slots: []BlockSlot{
			{Name: "title", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindText},
				Tags:        []string{"faq", "title"},
				Description: "Section title for the FAQ block.",
			}},
			{Name: "items", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindFAQItem},
				Tags:        []string{"faq", "question"},
				Description: "Question and answer most relevant to the request.",
			}},
		},
	},
	{
		Type:        "office-locations",
		Title:       "Office locations",
		Description: "Where the team works and how to get there.",
		Slots: []BlockSlot{
			{Name: "title", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindText},
				Tags:        []string{"locations", "title"},
				Description: "Section title for the locations block.",
			}},
			{Name: "address", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindAddress},
				Tags:        []string{"office", "address"},
				Description: "Main office address.",
			}},
			{Name: "handbook", Definition: SlotDefinition{
				Kinds:       []ArtifactKind{KindSheet, KindText},
				Tags:        []string{"office", "handbook"},
				Description: "Office handbook or schedule sheet.",
			}},
		},
	},
}

// BlockRegistry returns every known site block in presentation order.
func BlockRegistry() []BlockDefinition {
	out := make([]BlockDefinition, len(blockRegistry))
	copy(out, blockRegistry)
	return out
}

// LookupBlock returns the definition registered under blockType.
func LookupBlock(blockType string) (BlockDefinition, bool) {
	for _, b := range blockRegistry {
		if b.Type == blockType {
			return b, true
		}
	}
	return BlockDefinition{}, false
}

// BlockTypes lists the registered block type names in order.
func BlockTypes() []string {
	types := make([]string, len(blockRegistry))
	for i, b := range blockRegistry {
		types[i] = b.Type
	}
	return types
}

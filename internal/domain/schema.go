package domain

// Schema is the subset of JSON Schema used to constrain structured LLM output.
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	// PropertyOrder fixes the order properties are presented to the model.
	PropertyOrder []string
	Items         *Schema
	Required      []string
	Enum          []string
}

// Map renders the schema as a JSON-compatible map, as Ollama's format field expects.
func (s *Schema) Map() map[string]interface{} {
	if s == nil {
		return nil
	}
	out := map[string]interface{}{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.Map()
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = s.Items.Map()
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	return out
}

// SiteDefinitionSchema describes the selector output.
// Slots are an array of name/id pairs because structured-output backends
// reject objects with open-ended keys.
func SiteDefinitionSchema() *Schema {
	slot := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"slotName":   {Type: "string"},
			"artifactId": {Type: "string", Description: "ID of a candidate for this slot, or empty"},
		},
		PropertyOrder: []string{"slotName", "artifactId"},
		Required:      []string{"slotName", "artifactId"},
	}
	block := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"type":  {Type: "string", Enum: BlockTypes()},
			"slots": {Type: "array", Items: slot},
		},
		PropertyOrder: []string{"type", "slots"},
		Required:      []string{"type", "slots"},
	}
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"theme":     {Type: "string"},
			"blocks":    {Type: "array", Items: block},
			"reasoning": {Type: "string"},
		},
		PropertyOrder: []string{"theme", "blocks", "reasoning"},
		Required:      []string{"theme", "blocks", "reasoning"},
	}
}

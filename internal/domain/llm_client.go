package domain

import "context"

// Message is a single chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMClient sends chat prompts to an LLM whose output is constrained by a schema.
type LLMClient interface {
	// Chat returns the assistant reply. A nil format requests free-form text.
	Chat(ctx context.Context, messages []Message, format *Schema, maxTokens int) (*LLMResponse, error)
	Version() string
}

// LLMResponse carries the LLM output and whether the generation finished.
type LLMResponse struct {
	Text string
	Done bool
}

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/httpclient"
)

const defaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is satisfied by genai's Models service.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient sends chat prompts to the Gemini API with a response schema.
type GeminiClient struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

// NewGeminiClient creates a Gemini-backed LLM client.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	var httpClient *http.Client
	if timeout > 0 {
		httpClient = httpclient.NewPooledClient(timeout)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{models: client.Models, model: model, logger: logger}, nil
}

// Chat sends the conversation and returns the model's text.
// System messages become the system instruction.
func (c *GeminiClient) Chat(ctx context.Context, messages []domain.Message, format *domain.Schema, maxTokens int) (*domain.LLMResponse, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](selectionTemperature),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if format != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toGenAISchema(format)
	}

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("no user content to send")
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	finish := resp.Candidates[0].FinishReason
	c.logger.DebugContext(ctx, "gemini_chat_completed",
		slog.String("model", c.model),
		slog.String("finish_reason", string(finish)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &domain.LLMResponse{
		Text: strings.TrimSpace(resp.Text()),
		Done: finish == genai.FinishReasonStop,
	}, nil
}

// Version returns the wrapped model name.
func (c *GeminiClient) Version() string {
	return c.model
}

func toGenAISchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genaiType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		Enum:             s.Enum,
		PropertyOrdering: s.PropertyOrder,
		Items:            toGenAISchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

var _ domain.LLMClient = (*GeminiClient)(nil)

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"welcomecraft/internal/domain"
	"welcomecraft/internal/infra/httpclient"
)

const (
	selectionTemperature = 0.2
	keepAliveSeconds     = 600
)

type chatRequest struct {
	Model     string                 `json:"model"`
	Messages  []domain.Message       `json:"messages"`
	Stream    bool                   `json:"stream"`
	KeepAlive int                    `json:"keep_alive"`
	Format    map[string]interface{} `json:"format,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

// OllamaClient sends chat prompts to Ollama's /api/chat endpoint.
type OllamaClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

// NewOllamaClient constructs a client for the given endpoint and model.
// If client is nil, a pooled client is created with the given timeout.
func NewOllamaClient(baseURL, model string, timeout time.Duration, logger *slog.Logger, client ...*http.Client) *OllamaClient {
	var c *http.Client
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	} else {
		c = httpclient.NewPooledClient(timeout)
	}
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  c,
		logger:  logger,
	}
}

func (c *OllamaClient) buildOptions(maxTokens int) map[string]interface{} {
	opts := map[string]interface{}{
		"temperature": selectionTemperature,
	}
	if maxTokens > 0 {
		opts["num_predict"] = maxTokens
	}
	return opts
}

// Chat sends the conversation and returns the assistant message.
func (c *OllamaClient) Chat(ctx context.Context, messages []domain.Message, format *domain.Schema, maxTokens int) (*domain.LLMResponse, error) {
	reqBody := chatRequest{
		Model:     c.Model,
		Messages:  messages,
		Stream:    false,
		KeepAlive: keepAliveSeconds,
		Format:    format.Map(),
		Options:   c.buildOptions(maxTokens),
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	c.logger.DebugContext(ctx, "ollama_chat_completed",
		slog.String("model", c.Model),
		slog.String("done_reason", chatResp.DoneReason),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &domain.LLMResponse{
		Text: strings.TrimSpace(chatResp.Message.Content),
		Done: chatResp.Done,
	}, nil
}

// Version returns the wrapped model name.
func (c *OllamaClient) Version() string {
	return c.Model
}

var _ domain.LLMClient = (*OllamaClient)(nil)

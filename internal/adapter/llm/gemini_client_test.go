package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"welcomecraft/internal/domain"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestGeminiClient_Chat(t *testing.T) {
	fake := &fakeGenerator{resp: textResponse(`{"theme":"default","blocks":[]}`)}
	c := &GeminiClient{models: fake, model: "gemini-2.5-flash", logger: testLogger()}

	resp, err := c.Chat(context.Background(), []domain.Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "candidates"},
	}, domain.SiteDefinitionSchema(), 1024)
	require.NoError(t, err)

	assert.Equal(t, `{"theme":"default","blocks":[]}`, resp.Text)
	assert.True(t, resp.Done)
	assert.Equal(t, "gemini-2.5-flash", fake.model)
	require.Len(t, fake.contents, 1)
	assert.Equal(t, genai.RoleUser, fake.contents[0].Role)

	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "rules", fake.config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Equal(t, int32(1024), fake.config.MaxOutputTokens)
	require.NotNil(t, fake.config.ResponseSchema)
	assert.Equal(t, genai.TypeObject, fake.config.ResponseSchema.Type)
}

func TestGeminiClient_Chat_Errors(t *testing.T) {
	c := &GeminiClient{models: &fakeGenerator{err: errors.New("quota")}, model: "m", logger: testLogger()}
	_, err := c.Chat(context.Background(), []domain.Message{{Role: "user", Content: "x"}}, nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")

	c = &GeminiClient{models: &fakeGenerator{resp: &genai.GenerateContentResponse{}}, model: "m", logger: testLogger()}
	_, err = c.Chat(context.Background(), []domain.Message{{Role: "user", Content: "x"}}, nil, 0)
	assert.EqualError(t, err, "gemini returned no candidates")

	_, err = c.Chat(context.Background(), []domain.Message{{Role: "system", Content: "only rules"}}, nil, 0)
	assert.EqualError(t, err, "no user content to send")
}

func TestToGenAISchema(t *testing.T) {
	s := toGenAISchema(domain.SiteDefinitionSchema())

	assert.Equal(t, []string{"theme", "blocks", "reasoning"}, s.PropertyOrdering)
	blocks := s.Properties["blocks"]
	require.NotNil(t, blocks)
	assert.Equal(t, genai.TypeArray, blocks.Type)
	assert.Equal(t, genai.TypeObject, blocks.Items.Type)
	assert.Equal(t, domain.BlockTypes(), blocks.Items.Properties["type"].Enum)
	assert.Equal(t, genai.TypeString, blocks.Items.Properties["slots"].Items.Properties["artifactId"].Type)

	assert.Nil(t, toGenAISchema(nil))
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", 0, testLogger())
	require.Error(t, err)
}

package llms

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutorhub/pkg/models"
)

func TestParseStructuredOutput_PlainJSON(t *testing.T) {
	data, err := ParseStructuredOutput(`{"answer": 42}`)
	require.NoError(t, err)

	var parsed map[string]int
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, 42, parsed["answer"])
}

func TestParseStructuredOutput_FencedBlock(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"answer\": 42, \"topic\": \"algebra\"}\n```\nLet me know if you need more."

	data, err := ParseStructuredOutput(raw)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "algebra", parsed["topic"])
}

func TestParseStructuredOutput_FencedBlockWithoutLanguage(t *testing.T) {
	raw := "```\n[1, 2, 3]\n```"

	data, err := ParseStructuredOutput(raw)
	require.NoError(t, err)

	var parsed []int
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, []int{1, 2, 3}, parsed)
}

func TestParseStructuredOutput_Unparseable(t *testing.T) {
	_, err := ParseStructuredOutput("I'm sorry, I can't produce JSON for that.")
	require.Error(t, err)

	var structErr *models.StructuredOutputError
	require.ErrorAs(t, err, &structErr)
	assert.Contains(t, structErr.Error(), "could not parse structured output")
	assert.Contains(t, structErr.Excerpt, "I'm sorry")
}

func TestParseStructuredOutput_ExcerptTruncated(t *testing.T) {
	long := "not json "
	for len(long) < 1000 {
		long += "not json "
	}

	_, err := ParseStructuredOutput(long)
	require.Error(t, err)

	var structErr *models.StructuredOutputError
	require.ErrorAs(t, err, &structErr)
	assert.LessOrEqual(t, len(structErr.Excerpt), structuredExcerptLength)
}

func TestGenerateStructured(t *testing.T) {
	gemini := &fakeLLM{
		provider: models.ProviderGemini,
		text:     "```json\n{\"steps\": [\"isolate x\", \"divide by 2\"]}\n```",
	}
	svc := newFakeService(gemini)

	result, err := svc.GenerateStructured(context.Background(), &models.GenerationRequest{
		Prompt: "Explain how to solve 2x = 4",
	})
	require.NoError(t, err)

	var parsed struct {
		Steps []string `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(result.Data, &parsed))
	assert.Len(t, parsed.Steps, 2)
	assert.Equal(t, models.ProviderGemini, result.Provider)
}

func TestGenerateStructured_ForcesJSONFormatAndInstruction(t *testing.T) {
	var seen *models.GenerationRequest
	gemini := &fakeLLM{provider: models.ProviderGemini, text: "{}"}
	svc := newFakeService(gemini)

	// Wrap the fake to capture the request the service actually sends.
	svc.clients[models.ProviderGemini] = captureLLM{inner: gemini, seen: &seen}

	_, err := svc.GenerateStructured(context.Background(), &models.GenerationRequest{Prompt: "hi"})
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, models.ResponseFormatJSON, seen.ResponseFormat)
	assert.Contains(t, seen.Prompt, "valid JSON only")
}

type captureLLM struct {
	inner models.LLMClient
	seen  **models.GenerationRequest
}

func (c captureLLM) Provider() models.Provider {
	return c.inner.Provider()
}

func (c captureLLM) Available() bool {
	return c.inner.Available()
}

func (c captureLLM) Generate(
	ctx context.Context,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	*c.seen = req
	return c.inner.Generate(ctx, req)
}

package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutorhub/pkg/models"
	"github.com/tutorhub/tutorhub/pkg/testutils"
)

func TestMercuryLLM_Generate(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "mercury-coder-small",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "the answer"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 7},
		})
	}))
	defer ts.Close()

	cfg := testutils.NewTestConfig()
	cfg.LLM.Mercury.Endpoint = ts.URL
	client := NewMercuryLLM(cfg)

	result, err := client.Generate(context.Background(), &models.GenerationRequest{
		Prompt:       "What is 2+2?",
		SystemPrompt: "You are a math tutor.",
		History: []models.ChatMessage{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-mercury-key", gotAuth)
	assert.Equal(t, "mercury-coder-small", gotReq.Model)

	// Flat ordered message list: system, then history, then current turn.
	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "assistant", gotReq.Messages[2].Role)
	assert.Equal(t, "user", gotReq.Messages[3].Role)
	assert.Equal(t, "What is 2+2?", gotReq.Messages[3].Content)

	assert.Equal(t, "the answer", result.Text)
	assert.Equal(t, models.ProviderMercury, result.Provider)
	assert.Equal(t, 12, result.Usage.InputTokens)
	assert.Equal(t, 7, result.Usage.OutputTokens)
	assert.Equal(t, "stop", result.FinishReason)
}

func TestMercuryLLM_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model overloaded"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	cfg := testutils.NewTestConfig()
	cfg.LLM.Mercury.Endpoint = ts.URL
	client := NewMercuryLLM(cfg)

	_, err := client.Generate(context.Background(), &models.GenerationRequest{Prompt: "hi"})
	require.Error(t, err)

	var httpErr *models.UpstreamHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, models.ProviderMercury, httpErr.Provider)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "model overloaded")
}

func TestMercuryLLM_MissingCredential(t *testing.T) {
	cfg := testutils.NewTestConfig()
	cfg.LLM.Mercury.APIKey = "your-api-key-here"
	client := NewMercuryLLM(cfg)

	assert.False(t, client.Available())

	_, err := client.Generate(context.Background(), &models.GenerationRequest{Prompt: "hi"})
	require.Error(t, err)

	var credErr *models.CredentialMissingError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, models.ProviderMercury, credErr.Provider)
}

func TestMercuryLLM_DropsImagePartsFromPrompt(t *testing.T) {
	req := &models.GenerationRequest{
		Parts: []models.PromptPart{
			{Text: "describe this"},
			{ImageURL: "https://example.com/diagram.png"},
		},
	}

	wireReq := newChatCompletionRequest("mercury-coder-small", req, false)
	require.Len(t, wireReq.Messages, 1)
	assert.Equal(t, "describe this", wireReq.Messages[0].Content)
}

package llms

import (
	"context"
	"encoding/json"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/models"
)

const OpenAIAPIEndpoint = "https://api.openai.com/v1/chat/completions"
const DefaultOpenAIModel = "gpt-4o-mini"

var openAIKeyEnvVars = []string{"TUTORHUB_OPENAI_API_KEY", "OPENAI_API_KEY"}

var _ models.LLMClient = &OpenAILLM{}

func NewOpenAILLM(cfg *config.Config) *OpenAILLM {
	return &OpenAILLM{
		cfg:        cfg,
		httpClient: NewRetryableHTTPClient(MaxAPIRequestAttempts, apiTimeout(cfg)),
	}
}

type OpenAILLM struct {
	cfg        *config.Config
	httpClient *retryablehttp.Client
}

func (o *OpenAILLM) Provider() models.Provider {
	return models.ProviderOpenAI
}

func (o *OpenAILLM) Available() bool {
	return credentialConfigured(o.cfg.LLM.OpenAI.APIKey)
}

func (o *OpenAILLM) Generate(
	ctx context.Context,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	if !o.Available() {
		return nil, models.NewCredentialMissingError(models.ProviderOpenAI, openAIKeyEnvVars...)
	}

	model := req.Model
	if model == "" {
		model = o.cfg.LLM.OpenAI.Model
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	endpoint := o.cfg.LLM.OpenAI.Endpoint
	if endpoint == "" {
		endpoint = OpenAIAPIEndpoint
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.cfg.LLM.OpenAI.APIKey,
	}

	// OpenAI supports multi-part content with image URLs.
	wireReq := newChatCompletionRequest(model, req, true)

	body, err := postJSON(ctx, o.httpClient, models.ProviderOpenAI, endpoint, headers, wireReq)
	if err != nil {
		return nil, err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewLLMError("error unmarshaling openai response", err)
	}

	return resultFromChatCompletion(models.ProviderOpenAI, model, &resp)
}

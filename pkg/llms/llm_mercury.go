package llms

import (
	"context"
	"encoding/json"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/models"
)

// Mercury is Inception Labs' diffusion LLM. Its chat completions API is
// OpenAI-compatible.
const MercuryAPIEndpoint = "https://api.inceptionlabs.ai/v1/chat/completions"
const DefaultMercuryModel = "mercury-coder-small"

var mercuryKeyEnvVars = []string{"TUTORHUB_INCEPTION_API_KEY", "INCEPTION_API_KEY"}

var _ models.LLMClient = &MercuryLLM{}

func NewMercuryLLM(cfg *config.Config) *MercuryLLM {
	return &MercuryLLM{
		cfg:        cfg,
		httpClient: NewRetryableHTTPClient(MaxAPIRequestAttempts, apiTimeout(cfg)),
	}
}

type MercuryLLM struct {
	cfg        *config.Config
	httpClient *retryablehttp.Client
}

func (m *MercuryLLM) Provider() models.Provider {
	return models.ProviderMercury
}

func (m *MercuryLLM) Available() bool {
	return credentialConfigured(m.cfg.LLM.Mercury.APIKey)
}

func (m *MercuryLLM) Generate(
	ctx context.Context,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	if !m.Available() {
		return nil, models.NewCredentialMissingError(models.ProviderMercury, mercuryKeyEnvVars...)
	}

	model := req.Model
	if model == "" {
		model = m.cfg.LLM.Mercury.Model
	}
	if model == "" {
		model = DefaultMercuryModel
	}

	endpoint := m.cfg.LLM.Mercury.Endpoint
	if endpoint == "" {
		endpoint = MercuryAPIEndpoint
	}

	headers := map[string]string{
		"Authorization": "Bearer " + m.cfg.LLM.Mercury.APIKey,
	}

	// Mercury is text-only; image parts are dropped from the prompt.
	wireReq := newChatCompletionRequest(model, req, false)

	body, err := postJSON(ctx, m.httpClient, models.ProviderMercury, endpoint, headers, wireReq)
	if err != nil {
		return nil, err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewLLMError("error unmarshaling mercury response", err)
	}

	return resultFromChatCompletion(models.ProviderMercury, model, &resp)
}

package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/pkg/models"
)

const GeminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"
const DefaultGeminiModel = "gemini-1.5-flash"

var geminiKeyEnvVars = []string{"TUTORHUB_GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"}

var _ models.LLMClient = &GeminiLLM{}

func NewGeminiLLM(cfg *config.Config) *GeminiLLM {
	return &GeminiLLM{
		cfg:        cfg,
		baseURL:    GeminiAPIBase,
		httpClient: NewRetryableHTTPClient(MaxAPIRequestAttempts, apiTimeout(cfg)),
	}
}

type GeminiLLM struct {
	cfg        *config.Config
	baseURL    string
	httpClient *retryablehttp.Client
}

func (g *GeminiLLM) Provider() models.Provider {
	return models.ProviderGemini
}

func (g *GeminiLLM) Available() bool {
	return credentialConfigured(g.cfg.LLM.Gemini.APIKey)
}

func (g *GeminiLLM) Generate(
	ctx context.Context,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	if !g.Available() {
		return nil, models.NewCredentialMissingError(models.ProviderGemini, geminiKeyEnvVars...)
	}

	model := req.Model
	if model == "" {
		model = g.cfg.LLM.Gemini.Model
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	url := fmt.Sprintf(
		"%s/models/%s:generateContent?key=%s",
		g.baseURL,
		model,
		g.cfg.LLM.Gemini.APIKey,
	)

	body, err := postJSON(ctx, g.httpClient, models.ProviderGemini, url, nil, newGeminiRequest(req))
	if err != nil {
		return nil, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewLLMError("error unmarshaling gemini response", err)
	}

	return resultFromGeminiResponse(model, &resp)
}

// Wire types for the generateContent endpoint.

type geminiRequest struct {
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	Contents          []geminiContent   `json:"contents"`
	GenerationConfig  *geminiGenConfig  `json:"generationConfig,omitempty"`
	Tools             []geminiToolGroup `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"fileData,omitempty"`
}

type geminiFileData struct {
	FileURI  string `json:"fileUri"`
	MimeType string `json:"mimeType,omitempty"`
}

type geminiGenConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	TopK             *int     `json:"topK,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiToolGroup struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// newGeminiRequest maps the unified request onto the Gemini wire format.
// Conversation history precedes the current turn, with assistant turns
// mapped to Gemini's "model" role.
func newGeminiRequest(req *models.GenerationRequest) geminiRequest {
	out := geminiRequest{}

	if req.SystemPrompt != "" {
		out.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}

	for _, m := range req.History {
		out.Contents = append(out.Contents, geminiContent{
			Role:  geminiRole(m.Role),
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	out.Contents = append(out.Contents, geminiContent{
		Role:  "user",
		Parts: geminiPartsFromRequest(req),
	})

	cfg := geminiGenConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
		TopP:            req.TopP,
		TopK:            req.TopK,
	}
	if req.ResponseFormat == models.ResponseFormatJSON {
		cfg.ResponseMimeType = "application/json"
	}
	if cfg != (geminiGenConfig{}) {
		out.GenerationConfig = &cfg
	}

	if len(req.Tools) > 0 {
		group := geminiToolGroup{}
		for _, t := range req.Tools {
			group.FunctionDeclarations = append(group.FunctionDeclarations, geminiFunctionDecl{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		out.Tools = []geminiToolGroup{group}
	}

	return out
}

func geminiRole(role models.Role) string {
	if role == models.RoleAssistant {
		return "model"
	}
	return "user"
}

func geminiPartsFromRequest(req *models.GenerationRequest) []geminiPart {
	if len(req.Parts) == 0 {
		return []geminiPart{{Text: req.Prompt}}
	}

	parts := make([]geminiPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch {
		case p.ImageURL != "":
			parts = append(parts, geminiPart{FileData: &geminiFileData{FileURI: p.ImageURL}})
		case p.Text != "":
			parts = append(parts, geminiPart{Text: p.Text})
		}
	}
	return parts
}

func resultFromGeminiResponse(model string, resp *geminiResponse) (*models.GenerationResult, error) {
	if len(resp.Candidates) == 0 {
		return nil, NewLLMError("gemini returned no candidates", nil)
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	result := &models.GenerationResult{
		Text:         text.String(),
		Provider:     models.ProviderGemini,
		Model:        model,
		FinishReason: candidate.FinishReason,
	}
	// Gemini omits usage metadata on some responses; counts default to 0
	// and the generation service substitutes a tokenizer estimate.
	if resp.UsageMetadata != nil {
		result.Usage = models.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}

	return result, nil
}

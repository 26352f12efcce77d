package llms

import (
	"github.com/tutorhub/tutorhub/pkg/models"
)

// Wire types for the OpenAI chat completions schema. Mercury's API is
// OpenAI-compatible, so both clients share this codec.

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatMessage       `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	TopP        *float64            `json:"top_p,omitempty"`
	Tools       []chatTool          `json:"tools,omitempty"`
	Format      *chatResponseFormat `json:"response_format,omitempty"`
}

// chatMessage content is either a plain string or, for multimodal turns,
// a list of chatContentPart.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// newChatCompletionRequest builds the flat ordered message list: system
// prompt first, then conversation history, then the current turn. When
// multimodal is true, image parts are carried as image_url content parts;
// otherwise only the textual parts of the prompt are sent.
func newChatCompletionRequest(
	model string,
	req *models.GenerationRequest,
	multimodal bool,
) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(req.History)+2)

	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(models.RoleSystem), Content: req.SystemPrompt})
	}

	for _, m := range req.History {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	messages = append(messages, newUserTurn(req, multimodal))

	out := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}

	if req.ResponseFormat == models.ResponseFormatJSON {
		out.Format = &chatResponseFormat{Type: "json_object"}
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, chatTool{
			Type: "function",
			Function: chatToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	return out
}

func newUserTurn(req *models.GenerationRequest, multimodal bool) chatMessage {
	if len(req.Parts) == 0 {
		return chatMessage{Role: string(models.RoleUser), Content: req.Prompt}
	}

	if !multimodal {
		return chatMessage{Role: string(models.RoleUser), Content: req.Text()}
	}

	parts := make([]chatContentPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch {
		case p.ImageURL != "":
			parts = append(parts, chatContentPart{
				Type:     "image_url",
				ImageURL: &chatImageURL{URL: p.ImageURL},
			})
		case p.Text != "":
			parts = append(parts, chatContentPart{Type: "text", Text: p.Text})
		}
	}
	return chatMessage{Role: string(models.RoleUser), Content: parts}
}

// resultFromChatCompletion extracts the answer text and usage from an
// OpenAI-compatible response.
func resultFromChatCompletion(
	provider models.Provider,
	model string,
	resp *chatCompletionResponse,
) (*models.GenerationResult, error) {
	if len(resp.Choices) == 0 {
		return nil, NewLLMError(string(provider)+" returned no choices", nil)
	}

	result := &models.GenerationResult{
		Text:         resp.Choices[0].Message.Content,
		Provider:     provider,
		Model:        model,
		FinishReason: resp.Choices[0].FinishReason,
	}
	if resp.Model != "" {
		result.Model = resp.Model
	}
	if resp.Usage != nil {
		result.Usage = models.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}

	return result, nil
}

package models

import (
	"context"
	"encoding/json"
)

type Provider string

const (
	ProviderGemini  Provider = "gemini"
	ProviderMercury Provider = "mercury"
	ProviderOpenAI  Provider = "openai"
)

// FallbackOrder is the fixed priority sequence of providers tried after
// a failure. The provider that just failed is skipped.
var FallbackOrder = []Provider{ProviderGemini, ProviderMercury, ProviderOpenAI}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// PromptPart is a single element of a multimodal prompt. Either Text or
// ImageURL is set.
type PromptPart struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json"
)

// GenerationRequest is the unified request shape accepted by all provider
// clients. It is treated as immutable per call: the generation service
// copies it before mutating anything during fallback.
type GenerationRequest struct {
	Prompt string       `json:"prompt,omitempty"`
	Parts  []PromptPart `json:"parts,omitempty"`
	// Provider overrides the configured default provider.
	Provider Provider `json:"provider,omitempty"`
	// Model overrides the provider's configured model. Never carried
	// into fallback attempts.
	Model        string           `json:"model,omitempty"`
	SystemPrompt string           `json:"system_prompt,omitempty"`
	History      []ChatMessage    `json:"history,omitempty"`
	Tools        []ToolDefinition `json:"tools,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`

	ResponseFormat  ResponseFormat `json:"response_format,omitempty"`
	DisableFallback bool           `json:"disable_fallback,omitempty"`
}

// Text returns the textual portion of the prompt, joining part texts when
// the request is multimodal.
func (r *GenerationRequest) Text() string {
	if r.Prompt != "" {
		return r.Prompt
	}
	var text string
	for _, p := range r.Parts {
		if p.Text == "" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += p.Text
	}
	return text
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	// Estimated is true when the provider returned no usage counts and
	// the values are tokenizer estimates.
	Estimated bool `json:"estimated,omitempty"`
}

type GenerationResult struct {
	Text string `json:"text"`
	// Provider is the provider that actually served the request. It may
	// differ from the requested provider after fallback.
	Provider     Provider `json:"provider"`
	Model        string   `json:"model,omitempty"`
	Usage        Usage    `json:"usage"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// StructuredResult carries a structured generation response: the parsed
// JSON value plus the generation metadata it was produced with.
type StructuredResult struct {
	GenerationResult
	Data json.RawMessage `json:"data"`
}

// LLMClient is a single provider's chat completion client.
type LLMClient interface {
	// Provider returns the provider identity.
	Provider() Provider
	// Available reports whether the provider's credential is configured
	// and non-placeholder.
	Available() bool
	// Generate runs a chat completion for the given request.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
}

// GenerationService unifies the provider clients behind one interface and
// implements ordered provider fallback.
type GenerationService interface {
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)
	GenerateStructured(ctx context.Context, req *GenerationRequest) (*StructuredResult, error)
	// Providers lists the providers this service can route to, in
	// fallback order, regardless of availability.
	Providers() []Provider
}

// Embedder produces embedding vectors for text. Implementations degrade
// to a deterministic local scheme rather than failing, so embedding a
// text never errors outright; Embed returns an error only for empty input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions is the width of vectors produced by the fallback
	// scheme. Remote embeddings may differ; the vector store enforces a
	// single width per instance at insert time.
	Dimensions() int
}

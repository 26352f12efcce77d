package testutils

import (
	"github.com/tutorhub/tutorhub/config"
)

// NewTestConfig returns a config suitable for unit tests: all provider
// credentials set, no embedding endpoint (so the deterministic local
// fallback embedder is used), and small store limits.
func NewTestConfig() *config.Config {
	return &config.Config{
		LLM: config.LLM{
			DefaultProvider: "gemini",
			TimeoutSeconds:  5,
			Gemini: config.GeminiConfig{
				APIKey: "test-gemini-key",
				Model:  "gemini-1.5-flash",
			},
			Mercury: config.MercuryConfig{
				APIKey: "test-mercury-key",
				Model:  "mercury-coder-small",
			},
			OpenAI: config.OpenAIConfig{
				APIKey: "test-openai-key",
				Model:  "gpt-4o-mini",
			},
		},
		Embeddings: config.EmbeddingsConfig{
			Dimensions:     64,
			TimeoutSeconds: 2,
		},
		VectorStore: config.VectorStore{
			MaxVectors:          10,
			CleanupThreshold:    12,
			MaxContentLength:    2000,
			RecencyHalfLifeDays: 30,
		},
		Search: config.SearchConfig{
			BatchSize:    2,
			BatchDelayMs: 1,
		},
		Server: config.ServerConfig{
			Port: 8000,
		},
		Log: config.LogConfig{
			Level: "error",
		},
	}
}

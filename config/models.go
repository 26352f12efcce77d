package config

// Config holds the configuration of the application
// Use config.LoadConfig to create a new instance
type Config struct {
	LLM         LLM              `mapstructure:"llm"`
	Embeddings  EmbeddingsConfig `mapstructure:"embeddings"`
	VectorStore VectorStore      `mapstructure:"vector_store"`
	Search      SearchConfig     `mapstructure:"search"`
	Server      ServerConfig     `mapstructure:"server"`
	Log         LogConfig        `mapstructure:"log"`
}

// LLM configures the generation service and its provider clients.
type LLM struct {
	// DefaultProvider is used when a request carries no provider override.
	DefaultProvider string `mapstructure:"default_provider"`
	// DisableFallback turns off provider fallback process-wide.
	DisableFallback bool `mapstructure:"disable_fallback"`
	// TimeoutSeconds bounds a single provider call.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Mercury MercuryConfig `mapstructure:"mercury"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
}

type GeminiConfig struct {
	// APIKey is loaded from ENV not config file.
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type MercuryConfig struct {
	// APIKey is loaded from ENV not config file.
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

type OpenAIConfig struct {
	// APIKey is loaded from ENV not config file.
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// EmbeddingsConfig configures the embedding client. When the endpoint is
// unreachable or returns an unusable shape, the hashing fallback embedder
// is used instead.
type EmbeddingsConfig struct {
	Model          string `mapstructure:"model"`
	Endpoint       string `mapstructure:"endpoint"`
	Dimensions     int    `mapstructure:"dimensions"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type VectorStore struct {
	// MaxVectors is the number of vectors retained after a cleanup pass.
	MaxVectors int `mapstructure:"max_vectors"`
	// CleanupThreshold triggers a cleanup pass once exceeded. Must be
	// greater than MaxVectors.
	CleanupThreshold int `mapstructure:"cleanup_threshold"`
	// MaxContentLength bounds stored content in bytes.
	MaxContentLength int `mapstructure:"max_content_length"`
	// RecencyHalfLifeDays is the window over which the recency bonus
	// decays linearly to zero.
	RecencyHalfLifeDays int `mapstructure:"recency_window_days"`
}

type SearchConfig struct {
	// BatchSize is the number of documents indexed concurrently per batch.
	BatchSize int `mapstructure:"batch_size"`
	// BatchDelayMs is the pause between batches.
	BatchDelayMs int `mapstructure:"batch_delay_ms"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

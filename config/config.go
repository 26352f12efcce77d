package config

import (
	"strings"

	"github.com/tutorhub/tutorhub/internal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// We're bootstrapping so avoid any imports from other packages
var log = logrus.New()

// envBindings maps config keys to the ENV variables they may be set from.
// Multiple variables are tried in order; the first one set wins. API keys
// are never read from the config file.
var envBindings = map[string][]string{
	"llm.gemini.api_key":  {"TUTORHUB_GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"llm.mercury.api_key": {"TUTORHUB_INCEPTION_API_KEY", "INCEPTION_API_KEY"},
	"llm.openai.api_key":  {"TUTORHUB_OPENAI_API_KEY", "OPENAI_API_KEY"},
}

// LoadConfig loads the config file and ENV variables into a Config struct
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TUTORHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Warn("no config file found, using defaults and ENV")
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	for key, envVars := range envBindings {
		args := append([]string{key}, envVars...)
		if err := viper.BindEnv(args...); err != nil {
			log.Fatalf("Error binding environment variable: %s", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("llm.default_provider", "gemini")
	viper.SetDefault("llm.timeout_seconds", 60)
	viper.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("llm.mercury.model", "mercury-coder-small")
	viper.SetDefault("llm.mercury.endpoint", "https://api.inceptionlabs.ai/v1/chat/completions")
	viper.SetDefault("llm.openai.model", "gpt-4o-mini")
	viper.SetDefault("llm.openai.endpoint", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("embeddings.model", "text-embedding-004")
	viper.SetDefault("embeddings.dimensions", 384)
	viper.SetDefault("embeddings.timeout_seconds", 30)
	viper.SetDefault("vector_store.max_vectors", 1000)
	viper.SetDefault("vector_store.cleanup_threshold", 1100)
	viper.SetDefault("vector_store.max_content_length", 8000)
	viper.SetDefault("vector_store.recency_window_days", 30)
	viper.SetDefault("search.batch_size", 5)
	viper.SetDefault("search.batch_delay_ms", 100)
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("log.level", "info")
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Debug(".env file not found or unable to load")
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	internal.SetLogLevel(level)
	log.Info("Log level set to: ", level)
}

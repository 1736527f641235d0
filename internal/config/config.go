// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (ANSWERDESK_* runtime override)
//  2. Config file (~/.answerdesk/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Provider: OpenAI-compatible endpoint, embedding and chat models
//   - Storage: PostgreSQL connection (see storage.go)
//   - Pipeline: chunking, retrieval, and history-window parameters
//   - Server: listen address and per-IP rate limiting
//
// Sensitive data (API key, database password) is read but never logged.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the provider API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidChunking indicates chunk size/overlap values are unusable.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidHistoryWindow indicates the history window is out of range.
	ErrInvalidHistoryWindow = errors.New("invalid history window")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// Defaults for the provider and pipeline settings.
const (
	// DefaultEmbeddingModel is the embedding model requested from the
	// provider. The chunks.embedding column is sized for this model's 1536
	// dimensions; a model with a different dimension needs a schema
	// migration to match.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultChatModel is the completion model requested from the provider.
	DefaultChatModel = "gpt-4o-mini"

	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 1024

	// DefaultChunkSize is the chunk window size in characters.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the overlap between consecutive chunks.
	DefaultChunkOverlap = 100

	// DefaultTopK is the number of context chunks retrieved per query.
	DefaultTopK = 5

	// DefaultHistoryWindow is the number of recent messages fed to the model.
	DefaultHistoryWindow = 20
)

// Config stores application configuration.
type Config struct {
	// Provider configuration (OpenAI-compatible endpoint)
	OpenAIBaseURL  string `mapstructure:"openai_base_url"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`
	MaxTokens      int    `mapstructure:"max_tokens"`

	// Pipeline configuration
	ChunkSize     int `mapstructure:"chunk_size"`
	ChunkOverlap  int `mapstructure:"chunk_overlap"`
	TopK          int `mapstructure:"top_k"`
	HistoryWindow int `mapstructure:"history_window"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`

	// Server configuration
	ListenAddr string `mapstructure:"listen_addr"`
	RateBurst  int    `mapstructure:"rate_burst"`

	// Logging
	LogJSON  bool   `mapstructure:"log_json"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from defaults, the optional config file, and
// environment variables, in ascending priority.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Config file: ~/.answerdesk/config.yaml (optional)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".answerdesk"))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Missing file is fine: defaults + env cover the quick-start path.
	}

	// Environment overrides: ANSWERDESK_POSTGRES_HOST, ANSWERDESK_CHAT_MODEL, ...
	v.SetEnvPrefix("ANSWERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Conventional provider key takes precedence when the prefixed one is unset.
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding_model", DefaultEmbeddingModel)
	v.SetDefault("chat_model", DefaultChatModel)
	v.SetDefault("max_tokens", DefaultMaxTokens)

	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("history_window", DefaultHistoryWindow)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "answerdesk")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_dbname", "answerdesk")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("listen_addr", "127.0.0.1:3500")
	v.SetDefault("rate_burst", 60)

	v.SetDefault("log_json", false)
	v.SetDefault("log_level", "info")
}

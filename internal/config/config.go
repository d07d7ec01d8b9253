// Package config provides configuration loading for recalld.
//
// Configuration is read from an optional YAML file and overridden by
// environment variables. See Load for the precedence rules.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete recalld configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Generation GenerationConfig `koanf:"generation"`
	Retrieval  RetrievalConfig  `koanf:"retrieval"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EmbeddingConfig holds embedding capability configuration. The endpoint
// must speak the OpenAI embeddings API (OpenAI itself, TEI, or any
// compatible gateway).
type EmbeddingConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  Secret `koanf:"api_key"`
}

// GenerationConfig holds generation capability configuration, same
// endpoint conventions as EmbeddingConfig.
type GenerationConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  Secret `koanf:"api_key"`
}

// RetrievalConfig holds retrieval pipeline tuning.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per query.
	TopK int `koanf:"top_k"`
	// ChunkTokenBudget is the approximate token budget per chunk.
	ChunkTokenBudget int `koanf:"chunk_token_budget"`
}

// NewDefaultConfig returns the configuration recalld runs with when no
// file or environment overrides are present.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            4000,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
		},
		Generation: GenerationConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Retrieval: RetrievalConfig{
			TopK:             5,
			ChunkTokenBudget: 500,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Embedding.BaseURL == "" {
		return errors.New("embedding base URL required")
	}
	if c.Embedding.Model == "" {
		return errors.New("embedding model required")
	}
	if c.Generation.BaseURL == "" {
		return errors.New("generation base URL required")
	}
	if c.Generation.Model == "" {
		return errors.New("generation model required")
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top_k must be >= 1, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.ChunkTokenBudget < 1 {
		return fmt.Errorf("retrieval chunk_token_budget must be >= 1, got %d", c.Retrieval.ChunkTokenBudget)
	}
	return nil
}

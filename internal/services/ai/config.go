// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Provider string

	// Credentials and endpoint. For Azure BaseURL is the resource endpoint,
	// for OpenAI an optional OpenAI-compatible base URL.
	APIKey     string
	BaseURL    string
	APIVersion string

	// Deployment is the Azure deployment name or the model name for the other providers.
	Deployment string

	Timeout time.Duration

	// Generation parameters. These are fixed by DefaultConfig and not exposed as settings.
	Temperature float32
	MaxTokens   int
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("azure endpoint is required")
		}
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown AI provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %s", c.Provider)
	}
	if c.Deployment == "" {
		return fmt.Errorf("deployment (model) name is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderAzure,
		APIVersion:  "2023-05-15",
		Timeout:     60 * time.Second,
		Temperature: 0.7,
		MaxTokens:   150,
	}
}

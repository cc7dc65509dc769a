// File: internal/services/ai/provider.go
package ai

import (
	"context"

	"github.com/iyunix/kairos/internal/config"
)

// ConfigFrom picks the credentials of the provider selected in cfg.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Provider = cfg.AIProvider
	c.Deployment = cfg.DeploymentName
	c.Timeout = cfg.AITimeout
	switch cfg.AIProvider {
	case ProviderAzure:
		c.APIKey = cfg.AzureOpenAIKey
		c.BaseURL = cfg.AzureOpenAIEndpoint
		c.APIVersion = cfg.AzureOpenAIAPIVersion
	case ProviderOpenAI:
		c.APIKey = cfg.OpenAIAPIKey
		c.BaseURL = cfg.OpenAIBaseURL
	case ProviderGemini:
		c.APIKey = cfg.GeminiAPIKey
	}
	return c
}

// NewProvider builds the CompletionProvider selected by config.Provider.
// Providers holding a network client also implement io.Closer.
func NewProvider(ctx context.Context, config *Config) (CompletionProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	if config.Provider == ProviderGemini {
		return NewGeminiProvider(ctx, config)
	}
	return NewOpenAIProvider(config), nil
}

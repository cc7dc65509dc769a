// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to an Azure OpenAI deployment or any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	var clientConfig openai.ClientConfig
	if config.Provider == ProviderAzure {
		clientConfig = openai.DefaultAzureConfig(config.APIKey, config.BaseURL)
		if config.APIVersion != "" {
			clientConfig.APIVersion = config.APIVersion
		}
		// deployment names are used verbatim; the default mapper strips dots
		clientConfig.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		clientConfig = openai.DefaultConfig(config.APIKey)
		if config.BaseURL != "" {
			clientConfig.BaseURL = config.BaseURL
		}
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// GetCompletion makes exactly one chat completion call. There is no retry.
func (p *OpenAIProvider) GetCompletion(ctx context.Context, model string, transcript []Message) (string, error) {
	if model == "" {
		model = p.config.Deployment
	}
	if len(transcript) == 0 {
		return "", &AIError{Type: ErrTypeConfig, Operation: "completion", Model: model, Message: "empty transcript"}
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(transcript))
	for _, m := range transcript {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(model, err)
	}

	if len(resp.Choices) == 0 {
		return "", &AIError{Type: ErrTypeEmpty, Operation: "completion", Model: model, Message: "no choices in completion response"}
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", &AIError{Type: ErrTypeEmpty, Operation: "completion", Model: model, Message: "empty completion response"}
	}
	return reply, nil
}

func classifyOpenAIError(model string, err error) *AIError {
	aiErr := &AIError{Type: ErrTypeNetwork, Operation: "completion", Model: model, Message: "failed to create completion", Cause: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		aiErr.Code = apiErr.HTTPStatusCode
		aiErr.Type = typeForStatus(apiErr.HTTPStatusCode)
		aiErr.Message = apiErr.Message
	case errors.As(err, &reqErr):
		aiErr.Code = reqErr.HTTPStatusCode
		aiErr.Type = typeForStatus(reqErr.HTTPStatusCode)
	}
	return aiErr
}

func typeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrTypeAuth
	case status == http.StatusTooManyRequests:
		return ErrTypeRateLimit
	case status == 0:
		return ErrTypeNetwork
	default:
		return ErrTypeProvider
	}
}

// File: internal/services/ai/gemini_provider.go
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider replays the transcript as a Gemini chat session.
type GeminiProvider struct {
	config *Config
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, NewProviderError("gemini_client", "failed to create Gemini client", err)
	}
	return &GeminiProvider{config: config, client: client}, nil
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) GetCompletion(ctx context.Context, model string, transcript []Message) (string, error) {
	if model == "" {
		model = g.config.Deployment
	}
	system, history, last, err := splitForGemini(transcript)
	if err != nil {
		return "", &AIError{Type: ErrTypeConfig, Operation: "completion", Model: model, Message: err.Error()}
	}

	m := g.client.GenerativeModel(model)
	configureModel(m, g.config, system)

	session := m.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", NewProviderError("completion", "gemini generate failed", err)
	}
	return replyText(resp, model)
}

// configureModel applies the fixed generation parameters and the system prompt.
func configureModel(m *genai.GenerativeModel, config *Config, system string) {
	m.SetTemperature(config.Temperature)
	m.SetMaxOutputTokens(int32(config.MaxTokens))
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
}

// replyText joins the text parts of the first candidate.
func replyText(resp *genai.GenerateContentResponse, model string) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &AIError{Type: ErrTypeEmpty, Operation: "completion", Model: model, Message: "no candidates in Gemini response"}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", &AIError{Type: ErrTypeEmpty, Operation: "completion", Model: model, Message: "empty completion response"}
	}
	return reply, nil
}

// splitForGemini pulls system entries into one instruction, maps assistant
// turns to Gemini's "model" role and returns the final user utterance separately.
func splitForGemini(transcript []Message) (string, []*genai.Content, string, error) {
	var systemParts []string
	var turns []Message
	for _, m := range transcript {
		if m.Role == RoleSystem {
			systemParts = append(systemParts, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != RoleUser {
		return "", nil, "", fmt.Errorf("transcript must end with a user message")
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return strings.Join(systemParts, "\n\n"), history, turns[len(turns)-1].Content, nil
}

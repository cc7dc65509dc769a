// File: internal/services/ai/interface.go
package ai

import "context"

// Transcript roles in provider vocabulary.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one provider-agnostic transcript entry.
type Message struct {
	Role    string
	Content string
}

// CompletionProvider sends a full transcript to a generative model and
// returns the reply text. model is the deployment or model identifier.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, model string, transcript []Message) (string, error)
}

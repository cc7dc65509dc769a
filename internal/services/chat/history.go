// File: internal/services/chat/history.go
package chat

import (
	"context"

	"github.com/iyunix/kairos/internal/domain"
	"github.com/iyunix/kairos/internal/repository/message"
	"github.com/iyunix/kairos/internal/services/ai"
)

// RoleFor translates the stored sender into the provider's role vocabulary.
func RoleFor(sender string) string {
	if sender == domain.SenderAI {
		return ai.RoleAssistant
	}
	return ai.RoleUser
}

// AssembleHistory renders stored messages as transcript entries, oldest first.
// A positive window keeps only the newest window messages.
func AssembleHistory(messages []domain.Message, window int) []ai.Message {
	if window > 0 && len(messages) > window {
		messages = messages[len(messages)-window:]
	}
	out := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, ai.Message{Role: RoleFor(m.Sender), Content: m.Text})
	}
	return out
}

// HistoryAssembler loads a conversation's transcript from the message store.
type HistoryAssembler struct {
	messages message.MessageRepository
	window   int
	logger   Logger
}

func NewHistoryAssembler(messages message.MessageRepository, window int, logger Logger) *HistoryAssembler {
	return &HistoryAssembler{messages: messages, window: window, logger: logger}
}

func (h *HistoryAssembler) Load(ctx context.Context, conversationID uint) ([]ai.Message, error) {
	stored, err := h.messages.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	history := AssembleHistory(stored, h.window)
	h.logger.Debug("history assembled", "conversation_id", conversationID, "stored", len(stored), "replayed", len(history))
	return history, nil
}

// BuildTranscript puts the system prompt in front of the history.
func BuildTranscript(profile Profile, history []ai.Message) []ai.Message {
	transcript := make([]ai.Message, 0, len(history)+1)
	transcript = append(transcript, ai.Message{Role: ai.RoleSystem, Content: BuildSystemPrompt(profile)})
	return append(transcript, history...)
}

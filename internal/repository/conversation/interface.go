package conversation

import (
	"context"

	"github.com/iyunix/kairos/internal/domain"
)

// ConversationRepository handles conversation data operations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
}

package message

import (
	"context"

	"github.com/iyunix/kairos/internal/domain"
)

// MessageRepository handles message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error)
	CountByConversationID(ctx context.Context, conversationID uint) (int64, error)
}

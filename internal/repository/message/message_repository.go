// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/kairos/internal/domain"
)

type gormMessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create stamps the message with the server time and commits it. The stamp
// never precedes the conversation's latest message, even if the wall clock
// steps back.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	stamp := r.now()
	var latest domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", message.ConversationID).
		Order("timestamp desc").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error reading latest message for conversation ID %d: %v", message.ConversationID, err)
		return nil, errors.New("database error creating message")
	}
	if latest.ID != 0 && stamp.Before(latest.Timestamp) {
		stamp = latest.Timestamp.UTC()
	}
	message.Timestamp = stamp

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation for conversation ID %d: %v", message.ConversationID, err)
		return nil, errors.New("database error creating message")
	}
	return message, nil
}

// FindByConversationID returns every message of the conversation, oldest first.
// Equal timestamps fall back to insertion order.
func (r *gormMessageRepository) FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	if conversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp asc, id asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for conversation ID %d: %v", conversationID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByConversationID(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for conversation ID %d: %v", conversationID, err)
		return 0, errors.New("database error counting messages")
	}
	return count, nil
}

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ConversationID == 0 {
		return errors.New("conversation ID is required")
	}
	if !domain.IsValidSender(message.Sender) {
		return fmt.Errorf("invalid sender %q", message.Sender)
	}
	return nil
}

// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/iyunix/kairos/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// Create inserts and commits the conversation so its ID is usable immediately.
func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err := r.validateConversationInput(conversation); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		log.Printf("[ConversationRepository] Database error during conversation creation for user ID %d: %v", conversation.UserID, err)
		return nil, errors.New("database error creating conversation")
	}

	log.Printf("[ConversationRepository] Conversation created with ID: %d for user: %d", conversation.ID, conversation.UserID)
	return conversation, nil
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	if id == 0 {
		return nil, ErrConversationNotFound
	}

	var conversation domain.Conversation
	err := r.db.WithContext(ctx).First(&conversation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		log.Printf("[ConversationRepository] FindByID error for %d: %v", id, err)
		return nil, errors.New("database error finding conversation")
	}
	return &conversation, nil
}

func (r *gormConversationRepository) validateConversationInput(conversation *domain.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if conversation.UserID == 0 {
		return errors.New("user ID is required")
	}
	conversation.Topic = strings.TrimSpace(conversation.Topic)
	if conversation.Topic == "" {
		conversation.Topic = domain.DefaultConversationTopic
	}
	return nil
}

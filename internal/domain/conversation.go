// File: internal/domain/conversation.go
package domain

import "time"

// DefaultConversationTopic is used when a thread starts without an explicit topic.
const DefaultConversationTopic = "General Conversation"

// Conversation is a single chat thread owned by one user. Its topic is fixed at creation.
type Conversation struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index"`
	Topic     string `gorm:"size:200;not null"`
	CreatedAt time.Time
}

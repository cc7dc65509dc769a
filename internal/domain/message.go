// File: internal/domain/message.go
package domain

import "time"

// Sender values as stored in the messages table.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message represents a single turn half within a conversation.
type Message struct {
	ID             uint      `gorm:"primarykey"`
	ConversationID uint      `gorm:"not null;index"`
	Sender         string    `gorm:"size:10;not null"` // "user" or "ai"
	Text           string    `gorm:"type:text;not null"`
	Timestamp      time.Time `gorm:"not null;index"`
}

// IsValidSender reports whether s is one of the two stored roles.
func IsValidSender(s string) bool {
	return s == SenderUser || s == SenderAI
}

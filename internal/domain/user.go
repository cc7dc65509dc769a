// File: internal/domain/user.go
package domain

import "time"

const (
	DefaultTargetLanguage = "Spanish"
	DefaultFluencyLevel   = "Beginner"
	DefaultUserName       = "New User"
)

// User is a learner. The password hash is never serialized.
type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Name           string    `gorm:"size:100" json:"name"`
	TargetLanguage string    `gorm:"size:50;default:Spanish" json:"target_language"`
	FluencyLevel   string    `gorm:"size:50;default:Beginner" json:"fluency_level"`
	CurrentTopic   *string   `gorm:"size:200" json:"current_topic"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Topic returns the user's current topic or "" when none is set.
func (u *User) Topic() string {
	if u.CurrentTopic == nil {
		return ""
	}
	return *u.CurrentTopic
}

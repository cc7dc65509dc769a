// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"

	"github.com/iyunix/kairos/internal/domain"
)

type Config struct {
	// Deployment is passed to the completion provider as the model id.
	Deployment string

	// Timeout bounds a single tutor call.
	Timeout time.Duration

	// HistoryWindow keeps only the newest N messages; 0 replays everything.
	HistoryWindow int

	// DefaultTopic is used when neither the request nor the user names one.
	DefaultTopic string
}

func (c *Config) Validate() error {
	if c.Deployment == "" {
		return fmt.Errorf("deployment is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history_window cannot be negative")
	}
	if c.DefaultTopic == "" {
		return fmt.Errorf("default_topic is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Deployment:    "gpt-35-turbo",
		Timeout:       60 * time.Second,
		HistoryWindow: 0,
		DefaultTopic:  domain.DefaultConversationTopic,
	}
}

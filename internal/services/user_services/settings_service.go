// File: internal/services/user_services/settings_service.go
package user_services

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/kairos/internal/domain"
	"github.com/iyunix/kairos/internal/repository/user"
)

// Settings are a learner's preferences as the settings screen shows them.
type Settings struct {
	Language    string
	Proficiency string
	Topic       string
}

// SettingsUpdate carries only the fields the caller sent.
type SettingsUpdate struct {
	Language    *string
	Proficiency *string
	Topic       *string
}

type SettingsService struct {
	userRepo user.UserRepository
	logger   Logger
}

func NewSettingsService(userRepo user.UserRepository, logger Logger) *SettingsService {
	return &SettingsService{userRepo: userRepo, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context, userID uint) (*Settings, error) {
	u, err := s.findUser(ctx, "get_settings", userID)
	if err != nil {
		return nil, err
	}
	return &Settings{
		Language:    u.TargetLanguage,
		Proficiency: u.FluencyLevel,
		Topic:       u.Topic(),
	}, nil
}

// Update applies the fields present in upd. An empty topic clears it.
func (s *SettingsService) Update(ctx context.Context, userID uint, upd SettingsUpdate) error {
	const op = "update_settings"

	u, err := s.findUser(ctx, op, userID)
	if err != nil {
		return err
	}

	if upd.Language != nil {
		if v := strings.TrimSpace(*upd.Language); v != "" {
			u.TargetLanguage = v
		}
	}
	if upd.Proficiency != nil {
		if v := strings.TrimSpace(*upd.Proficiency); v != "" {
			u.FluencyLevel = v
		}
	}
	if upd.Topic != nil {
		if v := strings.TrimSpace(*upd.Topic); v != "" {
			u.CurrentTopic = &v
		} else {
			u.CurrentTopic = nil
		}
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		s.logger.Error("settings update failed", "user_id", userID, "error", err)
		return domain.NewInternalError(op, "failed to save settings", err)
	}

	s.logger.Info("settings updated",
		"user_id", userID,
		"language", u.TargetLanguage,
		"proficiency", u.FluencyLevel)
	return nil
}

func (s *SettingsService) findUser(ctx context.Context, op string, userID uint) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, domain.NewNotFoundError(op, "User not found")
		}
		return nil, domain.NewInternalError(op, "failed to load user", err)
	}
	return u, nil
}

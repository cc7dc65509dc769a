// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/kairos/internal/domain"
	"github.com/iyunix/kairos/internal/repository/user"
)

// RegisterInput mirrors the registration body; empty optional fields take defaults.
type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	TargetLanguage string
	FluencyLevel   string
}

type AuthService struct {
	userRepo user.UserRepository
	logger   Logger
}

func NewAuthService(userRepo user.UserRepository, logger Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a learner account. A duplicate email is a Conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	const op = "register"

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		s.logger.Warn("registration validation failed",
			"has_email", email != "",
			"has_password", in.Password != "")
		return nil, domain.NewValidationError(op, "Email and password are required")
	}

	s.logger.Info("user registration attempt", "email", maskEmail(email))

	hashed, err := HashPassword(in.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err, "email", maskEmail(email))
		return nil, domain.NewInternalError(op, "failed to register user", err)
	}

	created, err := s.userRepo.Create(ctx, &domain.User{
		Email:          email,
		PasswordHash:   hashed,
		Name:           withDefault(in.Name, domain.DefaultUserName),
		TargetLanguage: withDefault(in.TargetLanguage, domain.DefaultTargetLanguage),
		FluencyLevel:   withDefault(in.FluencyLevel, domain.DefaultFluencyLevel),
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			s.logger.Warn("registration failed - email already exists", "email", maskEmail(email))
			return nil, domain.NewConflictError(op, "Email already in use")
		}
		s.logger.Error("user creation failed", "error", err, "email", maskEmail(email))
		return nil, domain.NewInternalError(op, "failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", created.ID)
	return created, nil
}

// Login checks credentials. Unknown email and wrong password look the same to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "login"
	invalid := domain.NewUnauthorizedError(op, "Invalid email or password")

	if strings.TrimSpace(email) == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_email", email != "",
			"has_password", password != "")
		return nil, invalid
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "email", maskEmail(email))
			return nil, invalid
		}
		s.logger.Error("login lookup failed", "error", err)
		return nil, domain.NewInternalError(op, "failed to log in", err)
	}

	if !VerifyPassword(password, u.PasswordHash) {
		s.logger.Warn("login failed - invalid password", "user_id", u.ID)
		return nil, invalid
	}

	s.logger.Info("login successful", "user_id", u.ID)
	return u, nil
}

func withDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

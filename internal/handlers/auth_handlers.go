// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"

	"github.com/iyunix/kairos/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	authService *user_services.AuthService
	logger      Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *user_services.AuthService, logger Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	TargetLanguage string `json:"target_language"`
	FluencyLevel   string `json:"fluency_level"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), user_services.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		TargetLanguage: req.TargetLanguage,
		FluencyLevel:   req.FluencyLevel,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    userSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

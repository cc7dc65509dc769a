// File: internal/handlers/settings_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/kairos/internal/services/user_services"
)

type SettingsHandler struct {
	settingsService *user_services.SettingsService
	logger          Logger
}

func NewSettingsHandler(ss *user_services.SettingsService, logger Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: ss, logger: logger}
}

type settingsRequest struct {
	UserID      *uint   `json:"userId"`
	Language    *string `json:"language"`
	Proficiency *string `json:"proficiency"`
	Topic       *string `json:"topic"`
}

// UpdateSettings handles PUT /api/user/settings.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == nil {
		writeError(w, "userId is required", http.StatusBadRequest)
		return
	}

	err := h.settingsService.Update(r.Context(), *req.UserID, user_services.SettingsUpdate{
		Language:    req.Language,
		Proficiency: req.Proficiency,
		Topic:       req.Topic,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Settings saved successfully!"})
}

// GetSettings handles GET /api/user/settings/{userId}.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}

	settings, err := h.settingsService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"language":    settings.Language,
		"proficiency": settings.Proficiency,
		"topic":       settings.Topic,
	})
}

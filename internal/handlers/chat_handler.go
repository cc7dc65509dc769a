// File: internal/handlers/chat_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/kairos/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
	logger      Logger
}

func NewChatHandler(cs *services.ChatService, logger Logger) *ChatHandler {
	return &ChatHandler{chatService: cs, logger: logger}
}

type chatMessageRequest struct {
	UserID         uint    `json:"userId"`
	Text           string  `json:"text"`
	ConversationID *uint   `json:"conversationId"`
	Topic          *string `json:"topic"`
}

// HandleChatMessage handles POST /api/chat/message.
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.chatService.ProcessMessage(r.Context(), services.TurnRequest{
		UserID:         req.UserID,
		Text:           req.Text,
		ConversationID: req.ConversationID,
		Topic:          req.Topic,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversationId": result.ConversationID,
		"aiResponse":     toMessageResponse(result.AIMessage),
		"userMessage":    toMessageResponse(result.UserMessage),
	})
}

// GetChatHistory handles GET /api/chat/history/{conversationId}.
func (h *ChatHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := pathID(r, "conversationId")
	if !ok {
		writeError(w, "Conversation not found", http.StatusNotFound)
		return
	}

	messages, err := h.chatService.GetHistory(r.Context(), conversationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

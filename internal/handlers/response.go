// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/kairos/internal/domain"
)

// Logger mirrors services.Logger.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps an error type to its HTTP status. A duplicate email is
// reported as 400.
func statusFor(t domain.ErrorType) int {
	switch t {
	case domain.ErrTypeNotFound:
		return http.StatusNotFound
	case domain.ErrTypeConflict, domain.ErrTypeValidation:
		return http.StatusBadRequest
	case domain.ErrTypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service error as {error: msg}. Errors that are
// not an AppError get a generic message.
func writeServiceError(w http.ResponseWriter, logger Logger, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		logger.Error("unhandled service error", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := statusFor(appErr.Type)
	if status >= http.StatusInternalServerError {
		logger.Error("service error", "operation", appErr.Operation, "type", appErr.Type, "error", err)
	}
	writeError(w, appErr.Message, status)
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

// pathID reads a numeric route variable. The route pattern only admits
// digits, so a parse failure means the value is beyond any stored ID.
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 63)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// formatTimestamp renders message timestamps as ISO-8601 UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// messageResponse is the wire shape of a stored message.
type messageResponse struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{Sender: m.Sender, Text: m.Text, Timestamp: formatTimestamp(m.Timestamp)}
}

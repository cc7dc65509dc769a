// File: internal/handlers/page_handlers.go
package handlers

import (
	"net/http"
)

const banner = "Hello, Kairos backend is running!"

// PageHandler serves the plain endpoints that are not part of the API.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// ShowIndexPage answers GET / with a liveness banner.
func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, "Not found", http.StatusNotFound)
}

func (h *PageHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

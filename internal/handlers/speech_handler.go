// File: internal/handlers/speech_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iyunix/kairos/internal/services/speech"
)

const maxAudioUpload = 10 << 20

type SpeechHandler struct {
	provider speech.Provider
	logger   Logger
}

// NewSpeechHandler accepts a nil provider; the endpoints then report a
// configuration error.
func NewSpeechHandler(provider speech.Provider, logger Logger) *SpeechHandler {
	return &SpeechHandler{provider: provider, logger: logger}
}

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TextToSpeech handles POST /api/tts.
func (h *SpeechHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Language) == "" {
		writeError(w, "Text and language are required", http.StatusBadRequest)
		return
	}
	if h.provider == nil {
		writeError(w, "Speech service is not configured", http.StatusInternalServerError)
		return
	}

	audio, err := h.provider.Synthesize(r.Context(), req.Text, req.Language)
	if err != nil {
		h.logger.Error("text to speech failed", "language", req.Language, "error", err)
		writeError(w, "Speech synthesis failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// SpeechToText handles POST /api/stt with a multipart "audio" file and a
// "language" field.
func (h *SpeechHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, "No audio file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if h.provider == nil {
		writeError(w, "Speech service is not configured", http.StatusInternalServerError)
		return
	}

	language := strings.TrimSpace(r.FormValue("language"))
	if language == "" {
		language = "english"
	}

	text, err := h.provider.Transcribe(r.Context(), file, header.Header.Get("Content-Type"), language)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	case errors.Is(err, speech.ErrNoMatch):
		writeError(w, "No speech could be recognized", http.StatusBadRequest)
	default:
		h.logger.Error("speech to text failed", "language", language, "error", err)
		writeError(w, "Speech recognition failed: "+err.Error(), http.StatusInternalServerError)
	}
}

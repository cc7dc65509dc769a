// File: internal/handlers/router.go
package handlers

import (
	"net"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/iyunix/kairos/internal/middleware"
	"github.com/iyunix/kairos/internal/ratelimit"
	"github.com/iyunix/kairos/internal/services"
	"github.com/iyunix/kairos/internal/services/speech"
	"github.com/iyunix/kairos/internal/services/user_services"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	AuthService     *user_services.AuthService
	SettingsService *user_services.SettingsService
	ChatService     *services.ChatService
	Speech          speech.Provider
	AuthLimiter     ratelimit.Limiter
	AuthLimit       int
	TrustedProxies  []*net.IPNet
	AllowedOrigins  []string
	Logger          Logger
}

// NewRouter wires every route. CORS wraps the whole router so preflight
// requests are answered before route matching.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger

	authHandler := NewAuthHandler(deps.AuthService, logger)
	chatHandler := NewChatHandler(deps.ChatService, logger)
	settingsHandler := NewSettingsHandler(deps.SettingsService, logger)
	speechHandler := NewSpeechHandler(deps.Speech, logger)
	logHandler := NewLogHandler(logger)
	pageHandler := NewPageHandler()

	r := mux.NewRouter()
	// Logging sits outside recovery so a recovered panic still gets its access line.
	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.RecoverPanic(logger))

	// --- Public Routes ---
	r.HandleFunc("/", pageHandler.ShowIndexPage).Methods("GET")
	r.HandleFunc("/health", pageHandler.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	register := http.Handler(http.HandlerFunc(authHandler.Register))
	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if deps.AuthLimiter != nil {
		register = middleware.RateLimitMiddleware(deps.AuthLimiter, "register", deps.AuthLimit, deps.TrustedProxies, logger)(register)
		login = middleware.RateLimitMiddleware(deps.AuthLimiter, "login", deps.AuthLimit, deps.TrustedProxies, logger)(login)
	}
	api.Handle("/register", register).Methods("POST")
	api.Handle("/login", login).Methods("POST")

	api.HandleFunc("/chat/message", chatHandler.HandleChatMessage).Methods("POST")
	api.HandleFunc("/chat/history/{conversationId:[0-9]+}", chatHandler.GetChatHistory).Methods("GET")

	api.HandleFunc("/user/settings", settingsHandler.UpdateSettings).Methods("PUT")
	api.HandleFunc("/user/settings/{userId:[0-9]+}", settingsHandler.GetSettings).Methods("GET")

	api.HandleFunc("/tts", speechHandler.TextToSpeech).Methods("POST")
	api.HandleFunc("/stt", speechHandler.SpeechToText).Methods("POST")

	api.HandleFunc("/log", logHandler.LogFrontendEvent).Methods("POST")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(pageHandler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(pageHandler.MethodNotAllowed)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         86400,
	})(r)
}

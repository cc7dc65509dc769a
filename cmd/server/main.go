// File: cmd/server/main.go
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/kairos/internal/config"
	"github.com/iyunix/kairos/internal/handlers"
	"github.com/iyunix/kairos/internal/ratelimit"
	"github.com/iyunix/kairos/internal/repository"
	"github.com/iyunix/kairos/internal/repository/conversation"
	"github.com/iyunix/kairos/internal/repository/message"
	"github.com/iyunix/kairos/internal/repository/user"
	"github.com/iyunix/kairos/internal/services"
	"github.com/iyunix/kairos/internal/services/ai"
	chatservice "github.com/iyunix/kairos/internal/services/chat"
	"github.com/iyunix/kairos/internal/services/speech"
	"github.com/iyunix/kairos/internal/services/user_services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := services.NewLogger("kairos", cfg.LogLevel)

	// --- Database ---
	db, err := repository.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}
	if seeded, err := repository.SeedDefaultUser(context.Background(), db); err != nil {
		log.Fatalf("DB Seed Error: %v", err)
	} else if seeded {
		logger.Info("default user created", "user_id", repository.DefaultUserID)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	conversationRepo := conversation.NewConversationRepository(db)
	messageRepo := message.NewMessageRepository(db)

	// --- Services ---
	tutor, err := ai.NewProvider(context.Background(), ai.ConfigFrom(cfg))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize tutor provider: %v", err)
	}
	if closer, ok := tutor.(io.Closer); ok {
		defer closer.Close()
	}

	chatCfg := chatservice.DefaultConfig()
	chatCfg.Deployment = cfg.DeploymentName
	chatCfg.Timeout = cfg.AITimeout
	chatCfg.HistoryWindow = cfg.HistoryWindow
	chatService, err := services.NewChatService(chatCfg, userRepo, conversationRepo, messageRepo, tutor, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	authService := user_services.NewAuthService(userRepo, logger)
	settingsService := user_services.NewSettingsService(userRepo, logger)

	// A missing speech key only disables /api/tts and /api/stt.
	var speechProvider speech.Provider
	speechCfg := speech.DefaultConfig()
	speechCfg.Key = cfg.AzureSpeechKey
	speechCfg.Region = cfg.AzureSpeechRegion
	speechCfg.TempDir = cfg.SpeechTempDir
	if azure, err := speech.NewAzureProvider(speechCfg, logger); err != nil {
		logger.Warn("speech service disabled", "reason", err)
	} else {
		speechProvider = azure
	}

	limiter := newAuthLimiter(cfg, logger)
	defer limiter.Close()

	trustedProxies, err := ratelimit.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("FATAL: Invalid TRUSTED_PROXIES: %v", err)
	}

	// --- Router Setup ---
	router := handlers.NewRouter(handlers.RouterDeps{
		AuthService:     authService,
		SettingsService: settingsService,
		ChatService:     chatService,
		Speech:          speechProvider,
		AuthLimiter:     limiter,
		AuthLimit:       cfg.RateLimitPerMinute,
		TrustedProxies:  trustedProxies,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:          logger,
	})

	// --- Server Configuration ---
	port := ":5000"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Kairos backend starting",
		"port", port,
		"db_driver", cfg.DBDriver,
		"ai_provider", cfg.AIProvider,
		"speech_enabled", speechProvider != nil)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}

// newAuthLimiter prefers Redis when REDIS_ADDR is set and reachable.
func newAuthLimiter(cfg *config.Config, logger services.Logger) ratelimit.Limiter {
	limitCfg := ratelimit.PerMinuteConfig(cfg.RateLimitPerMinute)
	if cfg.RedisAddr != "" {
		redisLimiter, err := ratelimit.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, "", limitCfg)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = redisLimiter.Ping(ctx)
			cancel()
			if err == nil {
				logger.Info("rate limiter using redis", "addr", cfg.RedisAddr)
				return redisLimiter
			}
			_ = redisLimiter.Close()
		}
		logger.Warn("redis rate limiter unavailable, using memory", "error", err)
	}
	return ratelimit.NewMemoryRateLimiter(limitCfg)
}

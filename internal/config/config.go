// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	// Database
	DBDriver    string
	DatabaseURL string

	// Tutor model provider: "azure", "openai" or "gemini".
	AIProvider            string
	AzureOpenAIKey        string
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIVersion string
	DeploymentName        string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	GeminiAPIKey          string
	AITimeout             time.Duration
	HistoryWindow         int

	// Speech
	AzureSpeechKey    string
	AzureSpeechRegion string
	SpeechTempDir     string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	TrustedProxies     []string
	RedisAddr          string
	RedisPassword      string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL: getEnv("DATABASE_URL", "kairos.db"),

		AIProvider:            strings.ToLower(getEnv("AI_PROVIDER", "azure")),
		AzureOpenAIKey:        getEnv("AZURE_OPENAI_KEY", ""),
		AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2023-05-15"),
		DeploymentName:        getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-35-turbo"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		AITimeout:             time.Duration(getEnvAsInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
		HistoryWindow:         getEnvAsInt("HISTORY_WINDOW", 0), // 0 replays the whole conversation

		AzureSpeechKey:    getEnv("AZURE_SPEECH_KEY", ""),
		AzureSpeechRegion: getEnv("AZURE_SPEECH_REGION", "eastus"),
		SpeechTempDir:     getEnv("SPEECH_TEMP_DIR", os.TempDir()),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustedProxies:     getEnvAsList("TRUSTED_PROXIES", nil),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		if missing := cfg.MissingProductionKeys(); len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// Validate checks settings that make the process unusable regardless of environment.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.AIProvider {
	case "azure", "openai", "gemini":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("HISTORY_WINDOW cannot be negative")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is neither an IP nor a CIDR", proxy)
		}
	}
	return nil
}

// MissingProductionKeys lists the credentials the selected providers need.
func (c *Config) MissingProductionKeys() []string {
	missing := []string{}
	switch c.AIProvider {
	case "azure":
		if c.AzureOpenAIKey == "" {
			missing = append(missing, "AZURE_OPENAI_KEY")
		}
		if c.AzureOpenAIEndpoint == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	}
	if c.AzureSpeechKey == "" {
		missing = append(missing, "AZURE_SPEECH_KEY")
	}
	return missing
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

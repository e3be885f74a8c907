package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIChatModel  string
	OpenAIImageModel string
	PromptConfigURL  string
	ImageSize        string
	ImageQuality     string
	ImageDelay       time.Duration
	RevealDelay      time.Duration
	SessionTTL       time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	AllowedOrigins   []string
}

// DefaultPromptConfigURL is used when PROMPT_CONFIG_URL is not set. The remote
// document is a soft dependency; built-in defaults apply when it is missing.
const DefaultPromptConfigURL = "https://raw.githubusercontent.com/adstudio-assets/prompt-config/main/prompt-config.json"

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The OpenAI key is deliberately not required here:
// its absence is surfaced per-call by the providers, before any network
// attempt.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIChatModel:  getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		PromptConfigURL:  getEnv("PROMPT_CONFIG_URL", DefaultPromptConfigURL),
		ImageSize:        getEnv("IMAGE_SIZE", "1024x1024"),
		ImageQuality:     getEnv("IMAGE_QUALITY", "medium"),
		ImageDelay:       time.Second * time.Duration(getEnvInt("IMAGE_REQUEST_DELAY_SECONDS", 1)),
		RevealDelay:      time.Millisecond * time.Duration(getEnvInt("RESULT_REVEAL_DELAY_MS", 500)),
		SessionTTL:       time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

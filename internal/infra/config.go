package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Azure OpenAI credentials. Presence is validated at startup; a missing
	// key or endpoint is a fatal startup error, not a per-request one.
	AzureOpenAIAPIKey     string
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIVersion string

	// Job management bounds. Observed deployments disagree on several of
	// these, so all of them are configuration rather than constants.
	MaxConcurrentJobs          int
	MaxStoredJobs              int
	JobCleanupInterval         time.Duration
	JobMaxAge                  time.Duration
	PollInterval               time.Duration
	MaxPollAttempts            int
	MaxConsecutivePollFailures int

	// Request validation bounds.
	PromptMaxLength      int
	MinDurationSeconds   int
	MaxDurationSeconds   int
	SupportedResolutions []string

	DefaultLocale    string
	SupportedLocales []string
	GeoIPDBPath      string

	CORSAllowedOrigins []string
	RateLimitPerMin    int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                param("APP_ENV", "development"),
		Port:                  param("PORT", "8080"),
		AzureOpenAIAPIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureOpenAIEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIAPIVersion: param("AZURE_OPENAI_API_VERSION", "2024-12-01-preview"),

		MaxConcurrentJobs:          paramInt("MAX_CONCURRENT_JOBS", 10),
		MaxStoredJobs:              paramInt("MAX_STORED_JOBS", 50),
		JobCleanupInterval:         time.Second * time.Duration(paramInt("JOB_CLEANUP_INTERVAL_SECONDS", 3600)),
		JobMaxAge:                  time.Second * time.Duration(paramInt("JOB_MAX_AGE_SECONDS", 3600)),
		PollInterval:               time.Second * time.Duration(paramInt("POLL_INTERVAL_SECONDS", 10)),
		MaxPollAttempts:            paramInt("MAX_POLL_ATTEMPTS", 60),
		MaxConsecutivePollFailures: paramInt("MAX_CONSECUTIVE_POLL_FAILURES", 5),

		PromptMaxLength:      paramInt("PROMPT_MAX_LENGTH", 1000),
		MinDurationSeconds:   paramInt("MIN_DURATION_SECONDS", 1),
		MaxDurationSeconds:   paramInt("MAX_DURATION_SECONDS", 30),
		SupportedResolutions: paramList("SUPPORTED_RESOLUTIONS", []string{"1920x1080", "1080x1920", "1280x720", "720x1280", "1024x1024"}),

		DefaultLocale:    param("DEFAULT_LOCALE", "en"),
		SupportedLocales: paramList("SUPPORTED_LOCALES", []string{"en"}),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),

		CORSAllowedOrigins: paramList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitPerMin:    paramInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:    time.Second * time.Duration(paramInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(paramInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(paramInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.AzureOpenAIAPIKey == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_API_KEY is required")
	}
	if cfg.AzureOpenAIEndpoint == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if cfg.MinDurationSeconds < 1 || cfg.MaxDurationSeconds < cfg.MinDurationSeconds {
		return nil, fmt.Errorf("invalid duration bounds: %d..%d", cfg.MinDurationSeconds, cfg.MaxDurationSeconds)
	}

	return cfg, nil
}

func param(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func paramInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func paramList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

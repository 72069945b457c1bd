package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	UseMemoryQueue bool
	WorkerCount    int
	DatabaseURL    string

	// LLM providers
	LLMProvider       string
	GeminiAPIKey      string
	GeminiModelID     string
	BedrockModelID    string
	LLMMaxTokens      int
	LLMTemperature    float64
	CompletionTimeout time.Duration

	// Telegram
	TelegramBotToken     string
	TelegramBaseURL      string
	TelegramPollTimeout  time.Duration
	TelegramAPIRetries   int
	TelegramRetryBackoff time.Duration

	// Outreach engine
	ReplyTimeout      time.Duration
	MaxLeadMatches    int
	AdminJWTSecret    string
	CORSOrigins       []string
	OutreachJobsTTL   time.Duration
	CampaignRateLimit float64

	// AWS / queue
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	DispatchQueueURL    string
	OutreachJobsTable   string

	// Redis transcript store
	RedisAddr     string
	RedisPassword string
	TranscriptTTL time.Duration

	// Founder notifications
	NotifyEmailProvider string
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	FounderEmail        string
	FounderName         string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		LLMProvider:       strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "gemini"))),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", ""),
		LLMMaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 512),
		LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		CompletionTimeout: getEnvAsDuration("LLM_COMPLETION_TIMEOUT", 30*time.Second),

		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramBaseURL:      getEnv("TELEGRAM_BASE_URL", ""),
		TelegramPollTimeout:  getEnvAsDuration("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
		TelegramAPIRetries:   getEnvAsInt("TELEGRAM_API_RETRIES", 2),
		TelegramRetryBackoff: getEnvAsDuration("TELEGRAM_RETRY_BACKOFF", 250*time.Millisecond),

		ReplyTimeout:      getEnvAsDuration("OUTREACH_REPLY_TIMEOUT", 300*time.Second),
		MaxLeadMatches:    getEnvAsInt("OUTREACH_MAX_LEAD_MATCHES", 50),
		AdminJWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
		CORSOrigins:       splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		OutreachJobsTTL:   getEnvAsDuration("OUTREACH_JOBS_TTL", 24*time.Hour),
		CampaignRateLimit: getEnvAsFloat("CAMPAIGN_RATE_LIMIT", 2),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		DispatchQueueURL:    getEnv("DISPATCH_QUEUE_URL", ""),
		OutreachJobsTable:   getEnv("OUTREACH_JOBS_TABLE", "outreach_jobs"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		TranscriptTTL: getEnvAsDuration("TRANSCRIPT_TTL", 168*time.Hour),

		NotifyEmailProvider: strings.ToLower(strings.TrimSpace(getEnv("NOTIFY_EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Outreach AI"),
		FounderEmail:        getEnv("FOUNDER_EMAIL", ""),
		FounderName:         getEnv("FOUNDER_NAME", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey string
	GeminiModel  string

	// OpenAI fallback (optional; empty key disables the fallback provider)
	OpenAIAPIKey string
	OpenAIModel  string

	// Google Custom Search settings
	SearchAPIKey     string
	SearchEngineID   string
	SearchMaxResults int

	// Database (optional; empty falls back to the topics file)
	DatabaseURL string

	// SMTP settings
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Pipeline settings
	KeywordBatchSize int
	PromptsPath      string
	TopicsPath       string
	AuditDir         string

	// Retry settings
	RetryAttempts int
	RetryDelay    time.Duration
	QuotaCooldown time.Duration

	// Per-stage timeouts. Generation calls run far longer than search in
	// practice, so they get a much wider window.
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration

	// App settings
	Debug          bool
	MonitoringPort string
}

// Load reads configuration from the environment with sane defaults. A .env
// file next to the binary is honored when present, matching how the rest of
// the deployment is configured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GeminiModel:      "gemini-2.0-flash",
		OpenAIModel:      "gpt-4o-mini",
		SearchMaxResults: 10,
		KeywordBatchSize: 10,
		PromptsPath:      "configs/prompts.json",
		TopicsPath:       "configs/topics.yaml",
		AuditDir:         "audit",
		RetryAttempts:    3,
		RetryDelay:       5 * time.Second,
		QuotaCooldown:    60 * time.Second,
		SearchTimeout:    15 * time.Second,
		GenerateTimeout:  120 * time.Second,
		SMTPPort:         587,
		MonitoringPort:   "8080",
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.SearchAPIKey = os.Getenv("GOOGLE_SEARCH_KEY")
	cfg.SearchEngineID = os.Getenv("GOOGLE_SEARCH_CX")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMTPFrom = getEnvOrDefault("SMTP_FROM", cfg.SMTPUser)

	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.PromptsPath = getEnvOrDefault("PROMPTS_PATH", cfg.PromptsPath)
	cfg.TopicsPath = getEnvOrDefault("TOPICS_PATH", cfg.TopicsPath)
	cfg.AuditDir = getEnvOrDefault("AUDIT_DIR", cfg.AuditDir)
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SearchMaxResults = getEnvIntOrDefault("SEARCH_MAX_RESULTS", cfg.SearchMaxResults)
	cfg.KeywordBatchSize = getEnvIntOrDefault("KEYWORD_BATCH_SIZE", cfg.KeywordBatchSize)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := getEnvIntOrDefault("RETRY_DELAY_SECONDS", 0); v > 0 {
		cfg.RetryDelay = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("QUOTA_COOLDOWN_SECONDS", 0); v > 0 {
		cfg.QuotaCooldown = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("SEARCH_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.SearchTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("GENERATE_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.GenerateTimeout = time.Duration(v) * time.Second
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY or OPENAI_API_KEY is required")
	}
	if c.SearchAPIKey == "" {
		return fmt.Errorf("GOOGLE_SEARCH_KEY is required")
	}
	if c.SearchEngineID == "" {
		return fmt.Errorf("GOOGLE_SEARCH_CX is required")
	}
	if c.KeywordBatchSize <= 0 {
		return fmt.Errorf("KEYWORD_BATCH_SIZE must be positive")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	return nil
}

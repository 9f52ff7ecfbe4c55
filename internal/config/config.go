package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/jobtrail.db"`

	// Gmail
	GmailCredentialsPath string        `env:"GMAIL_CREDENTIALS_PATH" envDefault:"credentials.json"`
	GmailTokenPath       string        `env:"GMAIL_TOKEN_PATH" envDefault:"token.json"`
	GmailLabel           string        `env:"GMAIL_LABEL" envDefault:"SENT"`
	GmailRequestTimeout  time.Duration `env:"GMAIL_REQUEST_TIMEOUT" envDefault:"30s"`

	// Sync
	SyncMaxResults int64 `env:"SYNC_MAX_RESULTS" envDefault:"50"`
	SyncOnStart    bool  `env:"SYNC_ON_START" envDefault:"false"`

	// Model backend
	ModelAPIKey    string        `env:"MODEL_API_KEY,required"`
	ModelBaseURL   string        `env:"MODEL_BASE_URL" envDefault:"https://api.anthropic.com"`
	ModelName      string        `env:"MODEL_NAME"`
	ModelMaxTokens int           `env:"MODEL_MAX_TOKENS" envDefault:"1024"`
	ModelTimeout   time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`

	// HTTP API
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8000"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SyncMaxResults <= 0 {
		return nil, fmt.Errorf("SYNC_MAX_RESULTS must be positive, got %d", cfg.SyncMaxResults)
	}

	return cfg, nil
}

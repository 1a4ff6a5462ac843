package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"WISHWELL_BASE_URL" envDefault:"http://localhost:8080"`
	WebDistPath string `env:"WISHWELL_WEB_DIST" envDefault:"./web/dist"`

	DBDriver string `env:"WISHWELL_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"WISHWELL_DB_DSN" envDefault:"wishwell.db"`

	// Access tokens are issued by the hosted auth provider and signed with
	// its HS256 project secret.
	JWTSecret string `env:"JWT_SECRET" envDefault:"wishwell-dev-secret-change-in-production"`
	JWTIssuer string `env:"JWT_ISSUER"`

	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	InviteRatePerMin int `env:"INVITE_RATE_PER_MIN" envDefault:"10"`
	InviteRateBurst  int `env:"INVITE_RATE_BURST" envDefault:"5"`

	SupabaseURL   string `env:"SUPABASE_URL"`
	SupabaseKey   string `env:"SUPABASE_KEY"`
	StorageBucket string `env:"STORAGE_BUCKET" envDefault:"images"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file loaded", "error", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// StorageEnabled reports whether image uploads can be served
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"gatehouse"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"gatehouse"`
	DBName     string `env:"DB_NAME" envDefault:"gatehouse"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`

	GinMode     string   `env:"GIN_MODE" envDefault:"debug"`
	ListenAddr  string   `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"LOG_FORMAT" envDefault:"console"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	SMTPHostPort string `env:"SMTP_HOST_PORT"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPTLS      bool   `env:"SMTP_TLS" envDefault:"false"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@gatehouse.local"`

	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"168h"`

	AcceptRateRequests int           `env:"RATELIMIT_ACCEPT_REQUESTS" envDefault:"10"`
	AcceptRateWindow   time.Duration `env:"RATELIMIT_ACCEPT_WINDOW" envDefault:"1m"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.InvitationTTL <= 0 {
		return nil, fmt.Errorf("INVITATION_TTL must be positive")
	}
	if cfg.AcceptRateRequests <= 0 || cfg.AcceptRateWindow <= 0 {
		return nil, fmt.Errorf("accept rate limit must be positive")
	}

	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

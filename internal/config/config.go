package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server binary needs, loaded from the
// environment with sane local-development defaults.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	MySQLDSN  string `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/marketplace?parseTime=true"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CartTTL         time.Duration `env:"CART_TTL" envDefault:"720h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	BrowseLimit    int           `env:"BROWSE_LIMIT" envDefault:"200"`
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`
	PaymentDelay   time.Duration `env:"PAYMENT_DELAY" envDefault:"150ms"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.AppEnv != "local" && c.AppEnv != "docker" {
		return fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", c.AppEnv)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.MySQLDSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.CartTTL <= 0 {
		return fmt.Errorf("CART_TTL must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.BrowseLimit <= 0 {
		return fmt.Errorf("BROWSE_LIMIT must be positive")
	}
	return nil
}

// MaskDSN hides the password portion of a MySQL DSN
// (user:password@tcp(host:port)/db) so the value is safe to log.
func MaskDSN(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return dsn
	}
	colon := strings.Index(dsn[:at], ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}

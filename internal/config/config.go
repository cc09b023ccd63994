// Package config loads application settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application settings.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	SessionSecret  string
	SessionCookie  string
	SessionTTL     time.Duration
	SessionStore   string
	CookieSecure   bool
	RedisURL       string
	RabbitMQURL    string
	LogLevel       string
}

// Defaults suitable for local and demo use.
const (
	DefaultAppPort        = ":3000"
	DefaultDatabaseDriver = "postgres"
	DefaultDatabaseDSN    = "host=127.0.0.1 user=postgres password=postgres dbname=cartracker port=5432 sslmode=disable connect_timeout=5"
	DefaultSessionSecret  = "secretkey"
	DefaultSessionCookie  = "cartracker.sid"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultSessionStore   = "memory"
	DefaultRedisURL       = "redis://localhost:6379/0"
	DefaultLogLevel       = "info"
)

// Load reads configuration from environment variables, and from the file named
// by CONFIG_FILE when it is set. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", DefaultAppPort)
	v.SetDefault("DATABASE_DRIVER", DefaultDatabaseDriver)
	v.SetDefault("DATABASE_DSN", DefaultDatabaseDSN)
	v.SetDefault("SESSION_SECRET", DefaultSessionSecret)
	v.SetDefault("SESSION_COOKIE", DefaultSessionCookie)
	v.SetDefault("SESSION_TTL", DefaultSessionTTL)
	v.SetDefault("SESSION_STORE", DefaultSessionStore)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REDIS_URL", DefaultRedisURL)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", DefaultLogLevel)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionCookie:  v.GetString("SESSION_COOKIE"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		SessionStore:   v.GetString("SESSION_STORE"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		RedisURL:       v.GetString("REDIS_URL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

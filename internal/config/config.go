package config

import (
	"errors"
	"os"
	"time"
)

// Config holds process-wide settings. It is built once at startup from the
// environment and passed by reference to the components that need it.
type Config struct {
	Addr        string
	SecretKey   string
	BaseURL     string
	SendgridKey string
	EmailFrom   string
	AvatarsDir  string
	SessionTTL  time.Duration
}

// FromEnv reads configuration from environment variables, applying local
// defaults where a value is optional.
func FromEnv() *Config {
	cfg := &Config{
		Addr:        getenv("BIND_ADDR", "0.0.0.0:8432"),
		SecretKey:   os.Getenv("SECRET_KEY"),
		BaseURL:     getenv("BASE_URL", "http://localhost:8432"),
		SendgridKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:   os.Getenv("EMAIL_FROM"),
		AvatarsDir:  getenv("AVATARS_DIR", "public/avatars"),
		SessionTTL:  12 * time.Hour,
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	return cfg
}

// Validate reports settings without which the service cannot run.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/loganlanou/campusconnect/internal/auth"
	"github.com/loganlanou/campusconnect/internal/handlers"
	"github.com/loganlanou/campusconnect/internal/recaptcha"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	Session struct {
		Secret   string
		CacheTTL time.Duration
		// Wait is how long a request waits on a session fetch before the
		// loading page is served instead
		Wait time.Duration
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// Recaptcha guards the contact form when SecretKey is set
	Recaptcha struct {
		SiteKey   string
		SecretKey string
		MinScore  float64
	}

	// SMTP sends contact notifications to ContactInbox when Host is set
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	ContactInbox string

	// GuestBrowseLimit caps the listings a guest sees on the browse page
	GuestBrowseLimit int
}

// IsProduction reports whether cookies must be marked Secure
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() (*Config, error) {
	// .env.local overrides .env; neither has to exist
	for _, file := range []string{".env.local", ".env"} {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
	}

	config.API.BaseURL = getEnv("API_BASE_URL", "http://localhost:8080/api")
	config.API.Timeout = getDuration("API_TIMEOUT", 10*time.Second)

	config.Session.Secret = getEnv("SESSION_SECRET", "development-secret")
	config.Session.CacheTTL = getDuration("SESSION_CACHE_TTL", auth.DefaultCacheTTL)
	config.Session.Wait = getDuration("SESSION_WAIT", auth.DefaultWaitBudget)

	config.Redis.Addr = getEnv("REDIS_ADDR", "")
	config.Redis.Password = getEnv("REDIS_PASSWORD", "")
	config.Redis.DB = getInt("REDIS_DB", 0)

	config.Recaptcha.SiteKey = getEnv("RECAPTCHA_SITE_KEY", "")
	config.Recaptcha.SecretKey = getEnv("RECAPTCHA_SECRET_KEY", "")
	config.Recaptcha.MinScore = getFloat("RECAPTCHA_MIN_SCORE", recaptcha.DefaultMinScore)

	config.SMTP.Host = getEnv("SMTP_HOST", "")
	config.SMTP.Port = getInt("SMTP_PORT", 587)
	config.SMTP.Username = getEnv("SMTP_LOGIN", "")
	config.SMTP.Password = getEnv("SMTP_KEY", "")
	config.SMTP.From = getEnv("EMAIL_FROM", "")
	config.ContactInbox = getEnv("EMAIL_TO_INTERNAL", "support@campusconnect.in")

	config.GuestBrowseLimit = getInt("GUEST_BROWSE_LIMIT", handlers.DefaultGuestBrowseLimit)

	if config.IsProduction() && config.Session.Secret == "development-secret" {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}
	if config.SMTP.Host != "" && config.SMTP.From == "" {
		return nil, errors.New("EMAIL_FROM must be set when SMTP_HOST is")
	}
	if (config.Recaptcha.SecretKey == "") != (config.Recaptcha.SiteKey == "") {
		return nil, errors.New("RECAPTCHA_SITE_KEY and RECAPTCHA_SECRET_KEY must be set together")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer setting, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("invalid number setting, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return f
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration setting, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}

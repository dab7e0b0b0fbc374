package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// devSessionSecret is only accepted outside production.
const devSessionSecret = "dev-only-crm-session-secret-change-me"

type Config struct {
	AppEnv   string
	HTTPPort string
	LogLevel string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	AdminEmail    string
	AdminName     string
	AdminPassword string

	ImportMaxRows     int
	ImportMaxBytes    int64
	ImportPhoneRegion string

	RabbitMQURL string
	MailHost    string
	MailPort    int
	MailUser    string
	MailPass    string
	MailFrom    string

	CORSAllowedOrigins []string
	LoginRateLimit     int
	SentryDSN          string
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 7*24*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		ImportMaxRows:     getInt("IMPORT_MAX_ROWS", 10000),
		ImportMaxBytes:    int64(getInt("IMPORT_MAX_BYTES", 10<<20)),
		ImportPhoneRegion: getEnv("IMPORT_PHONE_REGION", "US"),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		MailHost:    getEnv("MAIL_HOST", ""),
		MailPort:    getInt("MAIL_PORT", 587),
		MailUser:    getEnv("MAIL_USER", ""),
		MailPass:    getEnv("MAIL_PASS", ""),
		MailFrom:    getEnv("MAIL_FROM", "no-reply@crm.local"),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		LoginRateLimit:     getInt("LOGIN_RATE_LIMIT", 10),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}

	cfg.CookieSecure = getBool("SESSION_COOKIE_SECURE", cfg.IsProduction())

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite3" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.DatabaseDriver))
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes in production"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.ImportMaxRows <= 0 || c.ImportMaxBytes <= 0 {
		errs = append(errs, errors.New("IMPORT_MAX_ROWS and IMPORT_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getDuration accepts Go durations ("168h") or plain seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

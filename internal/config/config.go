package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Log      LogConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// CORSOrigins is a comma separated list of allowed origins, or "*".
	CORSOrigins string
}

type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend string
	// SessionStore is the durable store behind session_db_auth:
	// "postgres" or "redis".
	SessionStore string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// Type selects the request authenticator. Empty disables the gate.
	Type string
	// SessionName is the cookie carrying the session ID.
	SessionName string
	// SessionDuration is the session lifetime. Zero or less never expires.
	SessionDuration time.Duration
	// KeepResetToken leaves a consumed reset token usable until the next
	// reset request.
	KeepResetToken bool
	ExcludedPaths  []string
}

type LogConfig struct {
	Level  string
	Format string
}

type EmailConfig struct {
	Enabled   bool
	APIKey    string
	FromEmail string
	FromName  string
	ResetURL  string
	Timeout   time.Duration
}

var defaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("API_HOST", "0.0.0.0"),
			Port:         getEnv("API_PORT", getEnv("SERVER_PORT", "5000")),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			CORSOrigins:  getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(getEnv("STORAGE", "memory")),
			SessionStore: strings.ToLower(getEnv("SESSION_STORE", "postgres")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "auth"),
			Password: getEnv("DB_PASSWORD", "auth"),
			DBName:   getEnv("DB_NAME", "authdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Type:            strings.ToLower(os.Getenv("AUTH_TYPE")),
			SessionName:     getEnv("SESSION_NAME", "_my_session_id"),
			SessionDuration: getSecondsEnv("SESSION_DURATION"),
			KeepResetToken:  getBoolEnv("AUTH_KEEP_RESET_TOKEN", false),
			ExcludedPaths:   getListEnv("AUTH_EXCLUDED_PATHS", defaultExcludedPaths),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Email: EmailConfig{
			Enabled:   getBoolEnv("EMAIL_ENABLED", false),
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM", ""),
			FromName:  getEnv("EMAIL_FROM_NAME", "Auth Service"),
			ResetURL:  getEnv("EMAIL_RESET_URL", "http://localhost:5000/reset_password"),
			Timeout:   getDurationEnv("EMAIL_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects unknown backend names.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage.Backend)
	}

	switch c.Storage.SessionStore {
	case "postgres", "redis":
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Storage.SessionStore)
	}

	if c.Auth.Type == "session_db_auth" && c.Storage.SessionStore == "postgres" && c.Storage.Backend != "postgres" {
		return fmt.Errorf("session_db_auth with SESSION_STORE=postgres requires STORAGE=postgres")
	}

	if c.Email.Enabled && (c.Email.APIKey == "" || c.Email.FromEmail == "") {
		return fmt.Errorf("EMAIL_ENABLED requires RESEND_API_KEY and EMAIL_FROM")
	}

	return nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv falls back to defaultValue when the variable is unset or not an
// integer.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getSecondsEnv reads a whole number of seconds. Values that are not integers
// or do not fit in a time.Duration read as zero.
func getSecondsEnv(key string) time.Duration {
	seconds, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || seconds > math.MaxInt64/int64(time.Second) || seconds < math.MinInt64/int64(time.Second) {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

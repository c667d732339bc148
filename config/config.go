package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tournament-engine/storage"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int
	LogLevel       log.Level
	LogFormat      string
	AllowedOrigins []string
	DBTimeout      time.Duration
	R2             storage.R2Config
}

// Load reads the configuration from the environment, after an optional .env
// file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err = log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	format := strings.ToLower(envOr("LOG_FORMAT", "text"))
	switch format {
	case "text", "json", "logfmt":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text, json or logfmt, got %q", format)
	}

	timeout := 5 * time.Second
	if raw := os.Getenv("DB_CONNECT_TIMEOUT"); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT environment variable %q", raw)
		}
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		JWTSecretKey:   jwtKey,
		ServerPort:     port,
		LogLevel:       level,
		LogFormat:      format,
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		DBTimeout:      timeout,
		R2: storage.R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

// Formatter maps LOG_FORMAT onto a charmbracelet formatter.
func (c *Config) Formatter() log.Formatter {
	switch c.LogFormat {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

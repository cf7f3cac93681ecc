package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	Server struct {
		Port           string
		Mode           string // gin mode: debug, release, test
		RequestTimeout time.Duration
		SessionSecret  string
		CORSOrigins    []string
		SiteURL        string
	}
	Store struct {
		Backend       string // file or postgres
		DataFile      string
		QueueSize     int
		CommitTimeout time.Duration
	}
	Database struct {
		URL string
	}
	Log struct {
		Level string
	}
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, reading config from environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.Mode = getEnv("GIN_MODE", "release")
	cfg.Server.RequestTimeout = getDuration("REQUEST_TIMEOUT", 10*time.Second)
	cfg.Server.SessionSecret = getEnv("SESSION_SECRET", "secret_key_change_me")
	cfg.Server.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))
	cfg.Server.SiteURL = getEnv("SITE_URL", "http://localhost:8080")

	cfg.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", "file"))
	cfg.Store.DataFile = getEnv("DATA_FILE", "data/database.json")
	cfg.Store.QueueSize = getInt("QUEUE_SIZE", 128)
	cfg.Store.CommitTimeout = getDuration("COMMIT_TIMEOUT", 5*time.Second)

	cfg.Database.URL = getEnv("DATABASE_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "INFO")

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("Invalid integer setting, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration setting, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package config provides environment-based configuration loading
// for the metadata service.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
)

// Base holds configuration common to every entry point.
type Base struct {
	Port     int
	LogLevel string
}

// Credentials identifies the observation database. The acquisition
// pipeline owns the database; this service only ever reads from it.
type Credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// API holds configuration for the metadata API service.
type API struct {
	Base
	DatabaseURL string
}

// LoadBase reads the common configuration from environment variables.
func LoadBase(defaultPort int) Base {
	return Base{
		Port:     GetEnvInt("PORT", defaultPort),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
	}
}

// LoadAPI returns the metadata API service configuration.
//
// The database location is resolved in order of precedence:
// DATABASE_URL, then a JSON credentials file named by
// DB_CREDENTIALS_FILE, then the discrete DB_* variables.
func LoadAPI() (API, error) {
	cfg := API{Base: LoadBase(8090)}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
		return cfg, nil
	}

	creds := Credentials{
		Host:     GetEnv("DB_HOST", "localhost"),
		Port:     GetEnvInt("DB_PORT", 5432),
		User:     GetEnv("DB_USER", "dss28"),
		Password: GetEnv("DB_PASSWORD", ""),
		Database: GetEnv("DB_NAME", "dss28_eac"),
	}

	if path := os.Getenv("DB_CREDENTIALS_FILE"); path != "" {
		loaded, err := LoadCredentialsFile(path)
		if err != nil {
			return API{}, err
		}
		creds = loaded
	}

	cfg.DatabaseURL = creds.DSN()
	return cfg, nil
}

// LoadCredentialsFile reads database credentials from a local JSON
// secret file. The file is read once at process start.
func LoadCredentialsFile(path string) (Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials file: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credentials{}, fmt.Errorf("credentials file %s: %w", path, err)
	}
	if c.Host == "" || c.User == "" || c.Database == "" {
		return Credentials{}, fmt.Errorf("credentials file %s: host, user and database are required", path)
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	return c, nil
}

// DSN renders the credentials as a PostgreSQL connection URL.
func (c Credentials) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := u.Query()
	q.Set("sslmode", GetEnv("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

// SlogLevel parses the configured log level string into an slog.Level.
func (b Base) SlogLevel() slog.Level {
	switch b.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr returns the listen address as ":PORT".
func (b Base) Addr() string {
	return fmt.Sprintf(":%d", b.Port)
}

// ---------------------------------------------------------------------------
// Env helpers
// ---------------------------------------------------------------------------

// GetEnv returns the value of the environment variable or fallback.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable or fallback.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

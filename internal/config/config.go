// Package config loads the process configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	ErrEnvironment = errors.New("APP_ENVIRONMENT must be development or production")
	ErrLogLevel    = errors.New("APP_LOG_LEVEL must be one of debug|info|warn|error")
	ErrLogFormat   = errors.New("APP_LOG_FORMAT must be json or console")
)

// Config is built once by Load and treated as read-only afterwards.
type Config struct {
	Environment string
	Addr        string
	ServiceName string

	Log Log

	CORSOrigins []string
	CORSHeaders []string
	APIToken    string
	DatabaseURL string
}

// Log holds the logger and sink settings.
type Log struct {
	Level  string
	Format string

	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	ShipURL    string
	ShipToken  string
}

// Load reads optional .env files and then APP_* environment variables.
// Variables already present in the environment take precedence over files.
func Load() (Config, error) {
	for _, f := range []string{".env", ".secrets.env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment: strings.ToLower(getenv("APP_ENVIRONMENT", EnvDevelopment)),
		Addr:        getenv("APP_ADDR", "127.0.0.1:8000"),
		ServiceName: getenv("APP_SERVICE_NAME", "example-api"),
		APIToken:    os.Getenv("APP_API_TOKEN"),
		CORSOrigins: splitList(getenv("APP_CORS_ORIGINS", "*")),
		CORSHeaders: splitList(os.Getenv("APP_CORS_HEADERS")),
		DatabaseURL: databaseURL(),
	}
	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return Config{}, ErrEnvironment
	}

	defFormat := FormatConsole
	if cfg.Environment == EnvProduction {
		defFormat = FormatJSON
	}
	cfg.Log = Log{
		Level:     strings.ToLower(getenv("APP_LOG_LEVEL", "info")),
		Format:    strings.ToLower(getenv("APP_LOG_FORMAT", defFormat)),
		File:      os.Getenv("APP_LOG_FILE"),
		ShipURL:   os.Getenv("APP_LOG_SHIP_URL"),
		ShipToken: os.Getenv("APP_LOG_SHIP_TOKEN"),
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, ErrLogLevel
	}
	if cfg.Log.Format != FormatJSON && cfg.Log.Format != FormatConsole {
		return Config{}, ErrLogFormat
	}

	var err error
	if cfg.Log.MaxSizeMB, err = getint("APP_LOG_MAX_SIZE_MB", 100); err != nil {
		return Config{}, err
	}
	if cfg.Log.MaxBackups, err = getint("APP_LOG_MAX_BACKUPS", 3); err != nil {
		return Config{}, err
	}
	if cfg.Log.MaxAgeDays, err = getint("APP_LOG_MAX_AGE_DAYS", 28); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// databaseURL prefers APP_DATABASE_URL and otherwise assembles a DSN from
// POSTGRES_* components when POSTGRES_HOST is set. Credentials are URL-encoded.
func databaseURL() string {
	if v := os.Getenv("APP_DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getenv("POSTGRES_USER", "postgres"), os.Getenv("POSTGRES_PASSWORD")),
		Host:   net.JoinHostPort(host, getenv("POSTGRES_PORT", "5432")),
		Path:   "/" + getenv("POSTGRES_DB", "postgres"),
	}
	q := url.Values{}
	q.Set("sslmode", getenv("POSTGRES_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid int for %s: %q", k, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

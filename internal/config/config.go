/*
Package config loads runtime settings for the server and CLI.

SOURCES (later wins):
  1. Defaults
  2. .env file in the working directory (optional)
  3. RATE_ENGINE_* environment variables
  4. Command-line flags (bound by cmd/server with Load() values as defaults)

VARIABLES:
  RATE_ENGINE_PORT             HTTP port (8080)
  RATE_ENGINE_DB               SQLite path (rates.db)
  RATE_ENGINE_LOG_LEVEL        debug, info, warn, error (info)
  RATE_ENGINE_LOG_FORMAT       console, json (console)
  RATE_ENGINE_MATRIX_WORKERS   parallel matrix cells; 0 = GOMAXPROCS
  RATE_ENGINE_ALLOWED_ORIGINS  comma-separated CORS origins
  RATE_ENGINE_RECONCILE_EVERY  override reconciliation interval, Go duration
                               (1h); 0 disables the scheduler
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "RATE_ENGINE_"

type Config struct {
	Port           int
	DBPath         string
	LogLevel       string
	LogFormat      string
	MatrixWorkers  int
	AllowedOrigins []string
	ReconcileEvery time.Duration
}

func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "rates.db",
		LogLevel:       "info",
		LogFormat:      "console",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		ReconcileEvery: time.Hour,
	}
}

// Load reads .env (when present) and the environment. Variables already set
// in the environment are not overridden by .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv(envPrefix + "PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("%sPORT: invalid port %q", envPrefix, v)
		}
		cfg.Port = port
	}
	if v := getenv(envPrefix + "DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv(envPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := getenv(envPrefix + "MATRIX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%sMATRIX_WORKERS: invalid count %q", envPrefix, v)
		}
		cfg.MatrixWorkers = n
	}
	if v := getenv(envPrefix + "ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := getenv(envPrefix + "RECONCILE_EVERY"); v != "" {
		every, err := time.ParseDuration(v)
		if err != nil || every < 0 {
			return Config{}, fmt.Errorf("%sRECONCILE_EVERY: invalid duration %q", envPrefix, v)
		}
		cfg.ReconcileEvery = every
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the pipeline driver.
type Config struct {
	// External tool
	Binary   string
	ShareDir string
	WorkDir  string

	// Failure model
	Strict        bool
	KeepOnFailure bool

	// ScaleJobs is how many images a scale run processes at once. The default of 1 keeps images
	// strictly sequential, larger values are an opt-in.
	ScaleJobs int

	// Logging
	LogLevel string
	LogFile  string

	// Optional artifacts
	LedgerDB  string
	GraphFile string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		Binary:        getEnvOrDefault("VESSEL_BIN", "vessel"),
		ShareDir:      getEnvOrDefault("VESSEL_SHARE_DIR", defaultShareDir()),
		WorkDir:       getEnvOrDefault("VESSEL_WORK_DIR", "."),
		Strict:        getEnvBoolOrDefault("VESSEL_STRICT", true),
		KeepOnFailure: getEnvBoolOrDefault("VESSEL_KEEP_ON_FAILURE", false),
		ScaleJobs:     getEnvIntOrDefault("VESSEL_SCALE_JOBS", 1),
		LogLevel:      strings.ToLower(getEnvOrDefault("VESSEL_LOG_LEVEL", "info")),
		LogFile:       getEnvOrDefault("VESSEL_LOG_FILE", ""),
		LedgerDB:      getEnvOrDefault("VESSEL_LEDGER_DB", ""),
		GraphFile:     getEnvOrDefault("VESSEL_GRAPH_FILE", ""),
	}
	if cfg.ScaleJobs < 1 {
		cfg.ScaleJobs = 1
	}

	return cfg, nil
}

// defaultShareDir mirrors the install layout: models live in ../share/vessel next to the driver binary.
func defaultShareDir() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("..", "share", "vessel")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), "..", "share", "vessel")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

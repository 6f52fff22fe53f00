package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds host settings read from the environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Sim       SimConfig
	RateLimit RateLimitConfig
	AdminKey  string
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

type SimConfig struct {
	Seed             int64 // 0 picks a random seed per island
	FrameInterval    time.Duration
	Speed            float64 // Game seconds per wall second
	AutosaveInterval time.Duration
	TuningPath       string // Empty uses Default()
	ImportPath       string // Snapshot file restored instead of the latest save
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool // Honor X-Forwarded-For / X-Real-IP
}

// LoadEnv reads .env (if present) and the process environment.
func LoadEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getInt("ISLESIM_PORT", 8080),
			AllowedOrigins: getList("ISLESIM_ALLOWED_ORIGINS", []string{"*"}),
			ReadTimeout:    time.Duration(getInt("ISLESIM_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:   time.Duration(getInt("ISLESIM_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Database: DatabaseConfig{
			Path: getEnv("ISLESIM_DB_PATH", "data/hexisle.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Sim: SimConfig{
			Seed:             int64(getInt("ISLESIM_SEED", 0)),
			FrameInterval:    time.Duration(getInt("ISLESIM_FRAME_MS", 100)) * time.Millisecond,
			Speed:            getFloat("ISLESIM_SPEED", 1),
			AutosaveInterval: time.Duration(getInt("ISLESIM_AUTOSAVE_SECONDS", 60)) * time.Second,
			TuningPath:       getEnv("ISLESIM_TUNING", ""),
			ImportPath:       getEnv("ISLESIM_IMPORT", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			RequestsPerSecond: getFloat("RATE_LIMIT_REQUESTS_PER_SECOND", 5),
			BurstSize:         getInt("RATE_LIMIT_BURST_SIZE", 10),
			TrustProxy:        getEnv("RATE_LIMIT_TRUST_PROXY", "false") == "true",
		},
		AdminKey: os.Getenv("ISLESIM_ADMIN_KEY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("ISLESIM_PORT %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("ISLESIM_DB_PATH is required")
	}
	if c.Sim.FrameInterval <= 0 {
		return fmt.Errorf("ISLESIM_FRAME_MS must be positive")
	}
	if c.Sim.Speed < 0 {
		return fmt.Errorf("ISLESIM_SPEED must not be negative")
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize < 1) {
		return fmt.Errorf("rate limit needs a positive rate and burst")
	}
	return nil
}

// StewardConfig holds the autoplayer's settings.
type StewardConfig struct {
	APIURL     string
	AdminKey   string
	Interval   time.Duration
	MemoryPath string // Empty keeps cycle memory in-process
	Logging    LoggingConfig
}

// LoadStewardEnv reads .env (if present) and the steward's variables.
func LoadStewardEnv() (*StewardConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := &StewardConfig{
		APIURL:     getEnv("ISLESIM_API_URL", "http://localhost:8080"),
		AdminKey:   os.Getenv("ISLESIM_ADMIN_KEY"),
		Interval:   time.Duration(getInt("STEWARD_INTERVAL_SECONDS", 10)) * time.Second,
		MemoryPath: getEnv("STEWARD_MEMORY", "steward_memory.json"),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *StewardConfig) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("ISLESIM_API_URL is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("STEWARD_INTERVAL_SECONDS must be positive")
	}
	return c.Logging.validate()
}

func (l LoggingConfig) validate() error {
	if l.Format != "text" && l.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", l.Format)
	}
	return nil
}

// Tuning loads the tuning file named by the config, or the defaults.
func (c *Config) Tuning() (*Rules, error) {
	if c.Sim.TuningPath == "" {
		return Default().Compile()
	}
	t, err := Load(c.Sim.TuningPath)
	if err != nil {
		return nil, fmt.Errorf("load tuning: %w", err)
	}
	return t.Compile()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

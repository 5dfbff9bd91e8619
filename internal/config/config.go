package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/crypto/bcrypt"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port      int
	Env       string
	LogLevel  string
	LogFormat string

	Storage  Storage
	Database Database

	SessionTTL time.Duration
	BcryptCost int

	// ClientIdleTTL is how long a client's search and drag state on a board
	// survives without requests.
	ClientIdleTTL time.Duration
}

type Storage struct {
	Backend        string
	RedisURL       string
	BoardKeyPrefix string
	DashboardKey   string
	WriteTimeout   time.Duration
}

type Database struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Schema   string
}

// DSN builds the connection string understood by the pgx-backed GORM driver.
func (d Database) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.Username, d.Password, d.Name, d.Port)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment. A .env file in the
// working directory is picked up automatically.
func Load() (*Config, error) {
	cfg := &Config{
		Env:       getenv("APP_ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
		Storage: Storage{
			Backend:        strings.ToLower(getenv("STORAGE_BACKEND", BackendMemory)),
			RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
			BoardKeyPrefix: getenv("BOARD_KEY_PREFIX", "kanban_board_"),
			DashboardKey:   getenv("DASHBOARD_KEY", "kanban_boards"),
		},
		Database: Database{
			Host:     getenv("BLUEPRINT_DB_HOST", "localhost"),
			Port:     getenv("BLUEPRINT_DB_PORT", "5432"),
			Username: os.Getenv("BLUEPRINT_DB_USERNAME"),
			Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Name:     os.Getenv("BLUEPRINT_DB_DATABASE"),
			Schema:   os.Getenv("BLUEPRINT_DB_SCHEMA"),
		},
	}

	var err error
	if cfg.Port, err = intFromEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = intFromEnv("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST %d: must be between %d and %d", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.SessionTTL, err = durationFromEnv("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Storage.WriteTimeout, err = durationFromEnv("PERSIST_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.ClientIdleTTL, err = durationFromEnv("CLIENT_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be greater than zero", key, v)
	}
	return d, nil
}

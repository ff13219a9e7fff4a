package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Log       LogConfig
	Store     StoreConfig
	Provider  ProviderConfig
	SyncState SyncStateConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"300s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name           string   `envconfig:"APP_NAME" default:"tcg-collection-api"`
	Environment    string   `envconfig:"APP_ENV" default:"development"`
	Debug          bool     `envconfig:"APP_DEBUG" default:"false"`
	Version        string   `envconfig:"APP_VERSION" default:"1.0.0"`
	APIPrefix      string   `envconfig:"API_PREFIX" default:"/api"`
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// LogConfig holds log output settings. File logging is off when File is empty.
type LogConfig struct {
	File       string `envconfig:"LOG_FILE" default:""`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"20"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"28"`
}

// StoreConfig holds catalog database settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres, or mysql
	Path string `envconfig:"STORE_PATH" default:"./data/pokemon.db"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"STORE_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_PORT" default:"0"`
	Name     string `envconfig:"STORE_NAME" default:"pokemon"`
	User     string `envconfig:"STORE_USER" default:""`
	Password string `envconfig:"STORE_PASS" default:""`
	SSLMode  string `envconfig:"STORE_SSLMODE" default:"disable"`
}

// ProviderConfig holds settings for the upstream card-data API.
type ProviderConfig struct {
	BaseURL           string        `envconfig:"POKEMON_TCG_API_URL" default:"https://api.pokemontcg.io/v2"`
	APIKey            string        `envconfig:"POKEMON_TCG_API_KEY" default:""`
	PageSize          int           `envconfig:"POKEMON_TCG_PAGE_SIZE" default:"250"`
	Timeout           time.Duration `envconfig:"POKEMON_TCG_TIMEOUT" default:"60s"`
	RequestsPerSecond float64       `envconfig:"POKEMON_TCG_RPS" default:"5"`
}

// SyncStateConfig selects where sync run reports are kept.
type SyncStateConfig struct {
	Type          string        `envconfig:"SYNC_STATE_TYPE" default:"memory"` // memory or redis
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix     string        `envconfig:"SYNC_STATE_KEY_PREFIX" default:"tcg:sync"`
	TTL           time.Duration `envconfig:"SYNC_STATE_TTL" default:"720h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// NormalizedType lower-cases the store type and folds aliases.
func (s *StoreConfig) NormalizedType() string {
	switch t := strings.ToLower(strings.TrimSpace(s.Type)); t {
	case "postgresql", "pg":
		return "postgres"
	case "mariadb":
		return "mysql"
	case "":
		return "sqlite"
	default:
		return t
	}
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, port, s.Name, s.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
// multiStatements is required for the schema migrations.
func (s *StoreConfig) MySQLDSN() string {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		s.User, s.Password, s.Host, port, s.Name)
}

// DSN returns the connection string for the configured store type.
// For SQLite this is the database file path.
func (s *StoreConfig) DSN() string {
	switch s.NormalizedType() {
	case "postgres":
		return s.PostgresDSN()
	case "mysql":
		return s.MySQLDSN()
	default:
		return s.Path
	}
}

// RedisAddress returns the Redis address in host:port format.
func (c *SyncStateConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !strings.HasPrefix(cfg.App.APIPrefix, "/") {
		cfg.App.APIPrefix = "/" + cfg.App.APIPrefix
	}
	cfg.App.APIPrefix = strings.TrimRight(cfg.App.APIPrefix, "/")

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

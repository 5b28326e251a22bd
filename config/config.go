// Package config loads and validates application configuration from
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minSessionSecretLength = 32
)

const (
	StorageBackendSupabase = "supabase"
	StorageBackendS3       = "s3"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// ServerConfig holds server and session settings.
type ServerConfig struct {
	Environment    Environment   `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string        `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string      `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string        `mapstructure:"VERSION" yaml:"version"`
	SessionSecret  string        `mapstructure:"SESSION_SECRET" yaml:"session_secret"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL" yaml:"session_ttl"`
	// AdminPassword is the shared operator password. Empty means login is
	// not configured and every login attempt fails with a configuration error.
	AdminPassword string `mapstructure:"ADMIN_PASSWORD" yaml:"admin_password"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL            string `mapstructure:"URL" yaml:"url"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	RunMigrations  bool   `mapstructure:"RUN_MIGRATIONS" yaml:"run_migrations"`
}

// SupabaseConfig holds the hosted project's endpoint and keys.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL" yaml:"url"`
	AnonKey    string `mapstructure:"ANON_KEY" yaml:"anon_key"`
	ServiceKey string `mapstructure:"SERVICE_KEY" yaml:"service_key"`
}

// StorageConfig selects and configures the object storage backend.
type StorageConfig struct {
	Backend            string        `mapstructure:"BACKEND" yaml:"backend"`
	Bucket             string        `mapstructure:"BUCKET" yaml:"bucket"`
	PublicBaseURL      string        `mapstructure:"PUBLIC_BASE_URL" yaml:"public_base_url"`
	S3Endpoint         string        `mapstructure:"S3_ENDPOINT" yaml:"s3_endpoint"`
	S3Region           string        `mapstructure:"S3_REGION" yaml:"s3_region"`
	S3AccessKeyID      string        `mapstructure:"S3_ACCESS_KEY_ID" yaml:"s3_access_key_id"`
	S3SecretAccessKey  string        `mapstructure:"S3_SECRET_ACCESS_KEY" yaml:"s3_secret_access_key"`
	CleanupInterval    time.Duration `mapstructure:"CLEANUP_INTERVAL" yaml:"cleanup_interval"`
	CleanupMaxAttempts int           `mapstructure:"CLEANUP_MAX_ATTEMPTS" yaml:"cleanup_max_attempts"`
	// Enabled is false when the selected backend lacks credentials.
	Enabled bool `mapstructure:"-" yaml:"-"`
}

// CacheConfig configures the read cache in front of public content.
type CacheConfig struct {
	Backend         string        `mapstructure:"BACKEND" yaml:"backend"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL" yaml:"refresh_interval"`
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// EmailConfig holds configuration for submission notification emails.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	NotifyTo     string `mapstructure:"NOTIFY_TO" yaml:"notify_to"`
}

// WorkerPoolConfig holds configuration for the background job pool.
type WorkerPoolConfig struct {
	MaxWorkers             int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	QueueSize              int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// SeedConfig controls startup seeding of initial content.
type SeedConfig struct {
	Content bool `mapstructure:"CONTENT" yaml:"content"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Supabase   SupabaseConfig   `mapstructure:"SUPABASE" yaml:"supabase"`
	Storage    StorageConfig    `mapstructure:"STORAGE" yaml:"storage"`
	Cache      CacheConfig      `mapstructure:"CACHE" yaml:"cache"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Email      EmailConfig      `mapstructure:"EMAIL" yaml:"email"`
	WorkerPool WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	Seed       SeedConfig       `mapstructure:"SEED" yaml:"seed"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// DataSecretsConfigured reports whether the database and the hosted project
// credentials needed by the admin data endpoints are present.
func (c *Config) DataSecretsConfigured() bool {
	return c.Database.URL != "" && c.Supabase.URL != "" && c.Supabase.ServiceKey != ""
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig reads a .env file when one exists, then environment variables,
// applies defaults, and validates the result.
func LoadConfig() (*Config, error) {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.SESSION_TTL", "24h")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.RUN_MIGRATIONS", true)
	v.SetDefault("STORAGE.BACKEND", StorageBackendSupabase)
	v.SetDefault("STORAGE.BUCKET", "recursos")
	v.SetDefault("STORAGE.S3_REGION", "auto")
	v.SetDefault("STORAGE.CLEANUP_INTERVAL", "5m")
	v.SetDefault("STORAGE.CLEANUP_MAX_ATTEMPTS", 10)
	v.SetDefault("CACHE.BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE.REFRESH_INTERVAL", "30s")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.FROM_NAME", "Consultorio")
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 100)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("SEED.CONTENT", true)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.SESSION_SECRET", "SESSION_SECRET"},
		{"SERVER.SESSION_TTL", "SESSION_TTL"},
		{"SERVER.ADMIN_PASSWORD", "ADMIN_PASSWORD"},
		// Database
		{"DATABASE.URL", "DATABASE_URL"},
		{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
		{"DATABASE.RUN_MIGRATIONS", "DB_RUN_MIGRATIONS"},
		// Supabase
		{"SUPABASE.URL", "SUPABASE_URL"},
		{"SUPABASE.ANON_KEY", "SUPABASE_ANON_KEY"},
		{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_KEY"},
		// Storage
		{"STORAGE.BACKEND", "STORAGE_BACKEND"},
		{"STORAGE.BUCKET", "STORAGE_BUCKET"},
		{"STORAGE.PUBLIC_BASE_URL", "STORAGE_PUBLIC_BASE_URL"},
		{"STORAGE.S3_ENDPOINT", "S3_ENDPOINT"},
		{"STORAGE.S3_REGION", "S3_REGION"},
		{"STORAGE.S3_ACCESS_KEY_ID", "S3_ACCESS_KEY_ID"},
		{"STORAGE.S3_SECRET_ACCESS_KEY", "S3_SECRET_ACCESS_KEY"},
		// Cache and Redis
		{"CACHE.BACKEND", "CACHE_BACKEND"},
		{"CACHE.REFRESH_INTERVAL", "CACHE_REFRESH_INTERVAL"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Email
		{"EMAIL.ENABLED", "EMAIL_ENABLED"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		{"EMAIL.NOTIFY_TO", "EMAIL_NOTIFY_TO"},
		// Seed
		{"SEED.CONTENT", "SEED_CONTENT"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"database_url", logger.MaskConnectionString(cfg.Database.URL),
		"storage_backend", cfg.Storage.Backend,
		"storage_enabled", cfg.Storage.Enabled,
		"cache_backend", cfg.Cache.Backend,
		"cache_refresh_interval", cfg.Cache.RefreshInterval,
		"email_enabled", cfg.Email.Enabled,
	)
	return &cfg, nil
}

func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if len(cfg.Server.SessionSecret) < minSessionSecretLength {
		return fmt.Errorf("session secret must be at least %d characters long", minSessionSecretLength)
	}
	if cfg.Server.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if cfg.Server.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD is not set; shared-password login will fail until it is configured")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if cfg.Database.MaxConnections <= 0 {
		return fmt.Errorf("database max connections must be positive")
	}

	if err := validateStorageConfig(cfg, log); err != nil {
		return err
	}

	switch cfg.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required when cache backend is redis")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if cfg.Cache.RefreshInterval <= 0 {
		return fmt.Errorf("cache refresh interval must be positive")
	}

	validateEmailConfig(&cfg.Email, log)

	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	return nil
}

// validateStorageConfig checks the selected backend and derives the public
// base URL. A backend without credentials is disabled rather than rejected.
func validateStorageConfig(cfg *Config, log *zap.SugaredLogger) error {
	s := &cfg.Storage
	if s.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("storage cleanup interval must be positive")
	}
	if s.CleanupMaxAttempts <= 0 {
		return fmt.Errorf("storage cleanup max attempts must be positive")
	}

	switch s.Backend {
	case StorageBackendSupabase:
		if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
			log.Warn("Supabase URL or service key not set, disabling file storage")
			s.Enabled = false
			return nil
		}
		if s.PublicBaseURL == "" {
			s.PublicBaseURL = strings.TrimRight(cfg.Supabase.URL, "/") + "/storage/v1/object/public/" + s.Bucket
		}
	case StorageBackendS3:
		if s.S3Endpoint == "" || s.S3AccessKeyID == "" || s.S3SecretAccessKey == "" {
			log.Warn("S3 endpoint or credentials not set, disabling file storage")
			s.Enabled = false
			return nil
		}
		if s.PublicBaseURL == "" {
			return fmt.Errorf("storage public base URL is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}

	if _, err := url.ParseRequestURI(s.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid storage public base URL: %w", err)
	}
	s.Enabled = true
	return nil
}

// validateEmailConfig auto-disables notifications that cannot be delivered.
func validateEmailConfig(cfg *EmailConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" || cfg.NotifyTo == "" {
		log.Warn("Email notifications enabled but Resend key, sender or recipient is missing; disabling")
		cfg.Enabled = false
	}
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

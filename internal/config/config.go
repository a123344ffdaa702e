package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	SMTP       SMTPConfig
	Geocoding  GeocodingConfig
	Movement   MovementConfig
	RateLimit  RateLimitConfig
	Dispatcher DispatcherConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int      `env:"APP_PORT" envDefault:"8080"`
	Env            string   `env:"APP_ENV" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"cmlabs_attendance"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	TraceQueries    bool          `env:"DB_TRACE_QUERIES" envDefault:"true"`

	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `env:"JWT_SECRET_KEY"`
	AccessExpiration string `env:"JWT_ACCESS_EXPIRATION_TIME" envDefault:"1h"`
}

// SMTPConfig holds outgoing mail configuration. An empty Host disables sending.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"no-reply@cmlabs.co"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"CMLabs Attendance"`
}

type GeocodingConfig struct {
	Enabled   bool          `env:"GEOCODING_ENABLED" envDefault:"true"`
	BaseURL   string        `env:"GEOCODING_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	UserAgent string        `env:"GEOCODING_USER_AGENT" envDefault:"cmlabs-attendance/1.0"`
	Timeout   time.Duration `env:"GEOCODING_TIMEOUT" envDefault:"5s"`
}

// MovementConfig controls movement alert deduplication.
type MovementConfig struct {
	Cooldown      time.Duration `env:"MOVEMENT_ALERT_COOLDOWN" envDefault:"1h"`
	CooldownStore string        `env:"MOVEMENT_COOLDOWN_STORE" envDefault:"memory"`
}

type RateLimitConfig struct {
	MaxActions int           `env:"RATE_LIMIT_MAX_ACTIONS" envDefault:"5"`
	Window     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// DispatcherConfig sizes the background alert dispatcher.
type DispatcherConfig struct {
	Workers     int           `env:"ALERT_WORKERS" envDefault:"2"`
	QueueSize   int           `env:"ALERT_QUEUE_SIZE" envDefault:"256"`
	TaskTimeout time.Duration `env:"ALERT_TASK_TIMEOUT" envDefault:"10s"`
}

type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"attendance-backend"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Info("No .env file found, using process environment")
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	switch c.Movement.CooldownStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("MOVEMENT_COOLDOWN_STORE must be memory or postgres, got %q", c.Movement.CooldownStore)
	}
	if c.Movement.Cooldown <= 0 {
		return fmt.Errorf("MOVEMENT_ALERT_COOLDOWN must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

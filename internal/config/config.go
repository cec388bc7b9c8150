// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	BaseURL         string        `yaml:"base_url"` // public origin used to build reminder callbacks
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}

type QStashConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type AsynqConfig struct {
	Queue string `yaml:"queue"`
}

type ReminderConfig struct {
	Driver        string        `yaml:"driver"` // workflow|asynq|noop
	CallbackPath  string        `yaml:"callback_path"`
	AcceptTimeout time.Duration `yaml:"accept_timeout"`
	Workers       int           `yaml:"workers"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	QStash        QStashConfig  `yaml:"qstash"`
	Asynq         AsynqConfig   `yaml:"asynq"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StatsConfig struct {
	RefreshCron string `yaml:"refresh_cron"`
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Reminder  ReminderConfig  `yaml:"reminder"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Stats     StatsConfig     `yaml:"stats"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// CallbackURL is the endpoint the reminder workflow calls back into.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + c.Reminder.CallbackPath
}

// LoadConfig reads the YAML file at path, then overlays .env files and
// well-known environment variables. A missing file is allowed when the
// environment supplies the required values.
func LoadConfig(path string, dev bool) (*Config, error) {
	loadDotEnv()

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	switch cfg.Reminder.Driver {
	case "workflow":
		if cfg.Reminder.QStash.URL == "" || cfg.Reminder.QStash.Token == "" {
			return nil, errors.New("reminder.qstash.url and reminder.qstash.token are required for the workflow driver")
		}
	case "asynq":
		if cfg.Redis.URL == "" {
			return nil, errors.New("redis.url is required for the asynq driver")
		}
	case "noop":
	default:
		return nil, fmt.Errorf("unknown reminder.driver %q", cfg.Reminder.Driver)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// loadDotEnv loads .env.<APP_ENV>.local first so that it wins over .env;
// godotenv never overrides variables that are already set.
func loadDotEnv() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	for _, f := range []string{".env." + env + ".local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func applyEnv(cfg *Config) error {
	setStr := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setStr(&cfg.Reminder.QStash.Token, "QSTASH_TOKEN")
	setStr(&cfg.Reminder.QStash.URL, "QSTASH_URL")
	setStr(&cfg.Server.BaseURL, "SERVER_URL")
	setStr(&cfg.Reminder.Driver, "REMINDER_DRIVER")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := parseExpiry(v)
		if err != nil {
			return fmt.Errorf("parse JWT_EXPIRES_IN: %w", err)
		}
		cfg.Auth.ExpiresIn = d
	}
	return nil
}

// parseExpiry accepts Go durations and the "<n>d" day shorthand.
func parseExpiry(v string) (time.Duration, error) {
	if strings.HasSuffix(v, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5500
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Auth.ExpiresIn <= 0 {
		cfg.Auth.ExpiresIn = 24 * time.Hour
	}
	if cfg.Reminder.Driver == "" {
		cfg.Reminder.Driver = "noop"
	}
	if cfg.Reminder.CallbackPath == "" {
		cfg.Reminder.CallbackPath = "/api/v1/workflows/subscription/reminder"
	}
	if cfg.Reminder.AcceptTimeout <= 0 {
		cfg.Reminder.AcceptTimeout = 3 * time.Second
	}
	if cfg.Reminder.HTTPTimeout <= 0 {
		cfg.Reminder.HTTPTimeout = 15 * time.Second
	}
	if cfg.Reminder.Workers <= 0 {
		cfg.Reminder.Workers = 4
	}
	if cfg.Reminder.Asynq.Queue == "" {
		cfg.Reminder.Asynq.Queue = "reminders"
	}
	if cfg.Stats.RefreshCron == "" {
		cfg.Stats.RefreshCron = "@every 1m"
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 30
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Minute
	}
	return d
}

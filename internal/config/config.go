package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultAPIToken = "dev-token"
)

// Config holds application configuration
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Planning    PlanningConfig  `toml:"planning"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	GRPCAddr  string  `toml:"grpc_addr"`
	OpsAddr   string  `toml:"ops_addr"`
	APIToken  string  `toml:"api_token"`
	RateLimit float64 `toml:"rate_limit"` // requests per second per user, 0 disables
	RateBurst int     `toml:"rate_burst"`
}

// StorageConfig selects the store. DSN wins over the discrete connection fields.
type StorageConfig struct {
	Driver          string `toml:"driver"`
	DSN             string `toml:"dsn"`
	Host            string `toml:"host"`
	Port            string `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	Name            string `toml:"name"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

type PlanningConfig struct {
	Tolerance           float64 `toml:"tolerance"` // accepted shortfall of the projected value, as a fraction
	Currency            string  `toml:"currency"`
	RecommendationLimit int     `toml:"recommendation_limit"`
}

type SchedulerConfig struct {
	Enabled            bool   `toml:"enabled"`
	MissedPaymentsCron string `toml:"missed_payments_cron"`
	GraceDays          int    `toml:"grace_days"`
}

// NewDefaultConfig returns the configuration used when no file or variable overrides it
func NewDefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			GRPCAddr:  ":8080",
			OpsAddr:   ":8081",
			APIToken:  defaultAPIToken,
			RateLimit: 20,
			RateBurst: 40,
		},
		Storage: StorageConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "folio",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: "30m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Planning: PlanningConfig{
			Tolerance:           0.01,
			Currency:            "KRW",
			RecommendationLimit: 3,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			MissedPaymentsCron: "0 0 1 * * *",
			GraceDays:          3,
		},
	}
}

// Load reads defaults, then every existing TOML file in order, then .env, then the environment
func Load(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies FOLIO_* variables and the plain DB_* / API_TOKEN variables
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Environment, "FOLIO_ENV")

	setString(&cfg.Server.GRPCAddr, "FOLIO_GRPC_ADDR")
	setString(&cfg.Server.OpsAddr, "FOLIO_OPS_ADDR")
	setString(&cfg.Server.APIToken, "API_TOKEN", "FOLIO_API_TOKEN")
	setFloat(&cfg.Server.RateLimit, "FOLIO_RATE_LIMIT")
	setInt(&cfg.Server.RateBurst, "FOLIO_RATE_BURST")

	setString(&cfg.Storage.Driver, "FOLIO_STORAGE_DRIVER")
	setString(&cfg.Storage.DSN, "DB_CONN_STR", "FOLIO_DB_DSN")
	setString(&cfg.Storage.Host, "DB_HOST")
	setString(&cfg.Storage.Port, "DB_PORT")
	setString(&cfg.Storage.User, "DB_USER")
	setString(&cfg.Storage.Password, "DB_PASSWORD")
	setString(&cfg.Storage.Name, "DB_NAME")
	setInt(&cfg.Storage.MaxOpenConns, "FOLIO_DB_MAX_OPEN_CONNS")

	setString(&cfg.Logging.Level, "FOLIO_LOG_LEVEL")
	setBool(&cfg.Logging.Pretty, "FOLIO_LOG_PRETTY")

	setFloat(&cfg.Planning.Tolerance, "FOLIO_PLAN_TOLERANCE")
	if v := os.Getenv("FOLIO_CURRENCY"); v != "" {
		cfg.Planning.Currency = strings.ToUpper(v)
	}
	setInt(&cfg.Planning.RecommendationLimit, "FOLIO_RECOMMENDATION_LIMIT")

	setBool(&cfg.Scheduler.Enabled, "FOLIO_SCHEDULER_ENABLED")
	setString(&cfg.Scheduler.MissedPaymentsCron, "FOLIO_MISSED_PAYMENTS_CRON")
	setInt(&cfg.Scheduler.GraceDays, "FOLIO_GRACE_DAYS")
}

// Validate checks the values the services cannot fall back from
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Planning.Tolerance <= 0 {
		return errors.New("planning tolerance must be positive")
	}
	if c.Server.APIToken == "" {
		return errors.New("API token is required")
	}
	if c.Environment != EnvDevelopment && c.Server.APIToken == defaultAPIToken {
		return errors.New("the development API token cannot be used outside development")
	}
	if c.Scheduler.GraceDays < 0 {
		return errors.New("scheduler grace days cannot be negative")
	}
	if _, err := c.Storage.Lifetime(); err != nil {
		return err
	}
	return nil
}

// ConnString returns the DSN, or builds one from the discrete connection fields
func (s StorageConfig) ConnString() string {
	if s.DSN != "" {
		return s.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		s.Host, s.Port, s.User, s.Password, s.Name)
}

// Lifetime parses ConnMaxLifetime; empty means no limit
func (s StorageConfig) Lifetime() (time.Duration, error) {
	if s.ConnMaxLifetime == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.ConnMaxLifetime)
	if err != nil {
		return 0, fmt.Errorf("invalid conn_max_lifetime %q: %w", s.ConnMaxLifetime, err)
	}
	return d, nil
}

// Helper functions

// setString applies every non-empty variable in order, so later keys win
func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

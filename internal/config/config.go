// Package config loads the service settings from the environment (and an
// optional .env file) through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret string `mapstructure:"JWT_SECRET"`
	JWTIssuer string `mapstructure:"JWT_ISSUER"`

	Timezone            string        `mapstructure:"APP_TIMEZONE"`
	ReminderCron        string        `mapstructure:"REMINDER_CRON"`
	ReminderConcurrency int           `mapstructure:"REMINDER_CONCURRENCY"`
	ReminderTimeout     time.Duration `mapstructure:"REMINDER_TIMEOUT"`

	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	ItemCacheTTL      time.Duration `mapstructure:"ITEM_CACHE_TTL"`

	location *time.Location
}

// DevJWTSecret signs tokens in development when JWT_SECRET is unset.
const DevJWTSecret = "kanso-dev-secret"

var defaults = map[string]any{
	"PORT":                 "8080",
	"ENVIRONMENT":          "development",
	"LOG_LEVEL":            "info",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "kanso_user",
	"DB_PASSWORD":          "secret",
	"DB_NAME":              "kanso_db",
	"REDIS_HOST":           "localhost",
	"REDIS_PORT":           "6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"JWT_SECRET":           "",
	"JWT_ISSUER":           "kanso-identity",
	"APP_TIMEZONE":         "Europe/Paris",
	"REMINDER_CRON":        "0 8 * * *",
	"REMINDER_CONCURRENCY": 8,
	"REMINDER_TIMEOUT":     "5m",
	"RATE_LIMIT_REQUESTS":  100,
	"RATE_LIMIT_WINDOW":    "1m",
	"ITEM_CACHE_TTL":       "5m",
}

// Load reads .env when present, then the process environment, which wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.ReminderConcurrency < 1 {
		return fmt.Errorf("REMINDER_CONCURRENCY must be at least 1")
	}
	if c.ReminderTimeout <= 0 {
		return fmt.Errorf("REMINDER_TIMEOUT must be positive")
	}
	if c.RateLimitRequests < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must allow at least one request per positive window")
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = DevJWTSecret
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Location is the civil zone deciding what "today" is.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/iliyamo/mufant-museum/internal/database"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; the per-concern configs are parsed from the same
// environment.
type Config struct {
	Env          string   `env:"APP_ENV" envDefault:"dev"`
	Port         string   `env:"APP_PORT" envDefault:"8080"`
	DBDriver     string   `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath       string   `env:"DB_PATH" envDefault:"mufant_museum.db"` // sqlite file or :memory:
	DBUser       string   `env:"DB_USER" envDefault:"root"`
	DBPass       string   `env:"DB_PASS"`
	DBHost       string   `env:"DB_HOST" envDefault:"localhost"`
	DBPort       string   `env:"DB_PORT" envDefault:"3306"`
	DBName       string   `env:"DB_NAME" envDefault:"mufant"`
	JWTSecret    string   `env:"JWT_SECRET"`
	AccessTTLMin int      `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`
	BcryptCost   int      `env:"BCRYPT_COST" envDefault:"10"`
	// Usernames granted the ADMIN role at login.
	AdminUsers   []string `env:"ADMIN_USERS"`

	Cache     CacheConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Queue     QueueConfig
}

// Load reads an optional .env file from the working directory and then
// parses the environment. Variables already set take precedence over the
// file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := database.ParseDialect(cfg.DBDriver); err != nil {
		return Config{}, err
	}
	cfg.RateLimit.normalize()
	cfg.Queue.applyFallbacks()
	return cfg, nil
}

// MustLoad is Load for main packages: a bad configuration is fatal.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Dialect returns the configured store dialect.
func (c Config) Dialect() database.Dialect {
	d, _ := database.ParseDialect(c.DBDriver)
	return d
}

// StoreOptions describes the configured store for database.Open.
func (c Config) StoreOptions() database.Options {
	return database.Options{
		Dialect: c.Dialect(),
		Path:    c.DBPath,
		User:    c.DBUser,
		Pass:    c.DBPass,
		Host:    c.DBHost,
		Port:    c.DBPort,
		Name:    c.DBName,
	}
}

// RoleFor returns the role a user logging in as username receives.
func (c Config) RoleFor(username string) string {
	for _, u := range c.AdminUsers {
		if strings.EqualFold(strings.TrimSpace(u), username) {
			return "ADMIN"
		}
	}
	return "VISITOR"
}

/*
Package config loads server configuration from the environment.

SOURCES (later wins):
  1. envDefault tags below
  2. .env file in the working directory, if present
  3. Process environment
  4. Command-line flags (applied by cmd/server)

Column-mapping profiles live in a separate TOML file named by
UA_PROFILES_PATH; see importer/profile.go.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/warp/upgrade-advisor/importer"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     int    `env:"UA_PORT" envDefault:"8080"`
	LogLevel string `env:"UA_LOG_LEVEL" envDefault:"info"`

	// Storage
	Driver   string `env:"UA_DB_DRIVER" envDefault:"sqlite"`
	DBPath   string `env:"UA_DB_PATH" envDefault:"upgrade-advisor.db"`
	MongoURI string `env:"UA_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"UA_MONGO_DB" envDefault:"upgrade_advisor"`

	// Analysis
	TrendWindowDays int    `env:"UA_TREND_WINDOW_DAYS" envDefault:"60"`
	ProfilesPath    string `env:"UA_PROFILES_PATH" envDefault:"profiles.toml"`

	AllowedOrigins []string `env:"UA_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	// Profiles is filled from ProfilesPath by Load.
	Profiles importer.Profiles `env:"-"`
}

// Load reads the optional dotenv files (".env" when none are given), then
// the environment, then the column profiles.
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profiles, err := importer.LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		return nil, err
	}
	cfg.Profiles = profiles
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("UA_DB_DRIVER must be one of sqlite, mongo, memory (got %q)", c.Driver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("UA_PORT out of range: %d", c.Port)
	}
	if c.TrendWindowDays <= 0 {
		return fmt.Errorf("UA_TREND_WINDOW_DAYS must be positive: %d", c.TrendWindowDays)
	}
	return nil
}

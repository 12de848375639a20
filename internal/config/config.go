// Package config holds environment-driven settings for the dashboard.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultLocationID is the fixed location filter of the climate source.
const DefaultLocationID = "1000000000"

// defaultExcludedVariables are disease-tagged pseudo-variables present in
// the climate source that must never be averaged as climate readings.
var defaultExcludedVariables = []string{"dengue", "leptospirosis", "malaria"}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DataConfig holds the source files and pipeline filters.
type DataConfig struct {
	CasesPath         string
	ClimatePath       string
	LocationID        string
	ClimateYear       int
	ExcludedVariables []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Logging LoggingConfig
}

// Load reads configuration from environment variables (optionally .env).
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Data: DataConfig{
			LocationID:        DefaultLocationID,
			ClimateYear:       time.Now().Year(),
			ExcludedVariables: defaultExcludedVariables,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if host := os.Getenv("EPIWATCH_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if portStr := os.Getenv("EPIWATCH_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid EPIWATCH_PORT: %s", portStr)
		}
		cfg.Server.Port = port
	}

	cfg.Data.CasesPath = os.Getenv("EPIWATCH_CASES_CSV")
	cfg.Data.ClimatePath = os.Getenv("EPIWATCH_CLIMATE_CSV")

	if loc := os.Getenv("EPIWATCH_LOCATION_ID"); loc != "" {
		cfg.Data.LocationID = loc
	}

	if yearStr := os.Getenv("EPIWATCH_CLIMATE_YEAR"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, fmt.Errorf("invalid EPIWATCH_CLIMATE_YEAR: %s", yearStr)
		}
		cfg.Data.ClimateYear = year
	}

	if excluded := os.Getenv("EPIWATCH_EXCLUDED_VARIABLES"); excluded != "" {
		parts := strings.Split(excluded, ",")
		vars := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				vars = append(vars, p)
			}
		}
		cfg.Data.ExcludedVariables = vars
	}

	if level := os.Getenv("EPIWATCH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Data.CasesPath == "" {
		return fmt.Errorf("EPIWATCH_CASES_CSV is required")
	}
	if c.Data.ClimatePath == "" {
		return fmt.Errorf("EPIWATCH_CLIMATE_CSV is required")
	}
	if c.Data.ClimateYear < 1900 || c.Data.ClimateYear > 2200 {
		return fmt.Errorf("climate year %d out of range", c.Data.ClimateYear)
	}
	return nil
}

// ExcludedSet returns the excluded variables as a set for the aggregator.
func (c *Config) ExcludedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Data.ExcludedVariables))
	for _, v := range c.Data.ExcludedVariables {
		set[v] = struct{}{}
	}
	return set
}

// ListenAddr returns the host:port string for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

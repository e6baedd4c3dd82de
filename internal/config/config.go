// Package config loads the process-level YAML configuration (database DSN,
// HTTP bind address, debounce window, timezone/calendar paths). It does not
// carry the BESS/tariff parameters a run consolidates from — those come
// from the params forms (internal/params), not this file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML), overlaid with secret
// environment variables at load time (spec §10.1: "the database password
// is never written to the YAML file checked into the repo").
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Run      RunConfig      `yaml:"run"`
	API      APIConfig      `yaml:"api"`
	Paths    PathsConfig    `yaml:"paths"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"` // overridden by ENERGY_CORE_DB_PASSWORD
	Name            string `yaml:"name"`
	SSLMode         string `yaml:"sslmode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
}

type RunConfig struct {
	TimeZone         string        `yaml:"timezone"`
	DebounceWindow   time.Duration `yaml:"debounce_window"`
	CyclesPerDayMax  int           `yaml:"cycles_per_day_max"`
}

type APIConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type PathsConfig struct {
	WorkdayCalendar string `yaml:"workday_calendar"`
	HolidayCalendar string `yaml:"holiday_calendar"`
}

// DSN builds a lib/pq connection string from the database section.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslmode)
}

// Load reads, overlays, defaults, and validates a config file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	applyDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and overlays config, but does not apply defaults or
// validate it. Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	overlayEnv(&c)
	return &c, nil
}

// overlayEnv overrides secret-bearing fields from the environment so the
// YAML on disk never needs to carry a live credential.
func overlayEnv(c *Config) {
	if v := os.Getenv("ENERGY_CORE_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("ENERGY_CORE_DB_HOST"); v != "" {
		c.Database.Host = v
	}
}

func applyDefaults(c *Config) {
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 8
	}
	if c.Run.TimeZone == "" {
		c.Run.TimeZone = "Europe/Warsaw"
	}
	if c.Run.DebounceWindow == 0 {
		c.Run.DebounceWindow = 2 * time.Second
	}
	if c.Run.CyclesPerDayMax == 0 {
		c.Run.CyclesPerDayMax = 1
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}
	if _, err := time.LoadLocation(c.Run.TimeZone); err != nil {
		return fmt.Errorf("run.timezone invalid: %w", err)
	}
	if c.Run.CyclesPerDayMax <= 0 {
		return errors.New("run.cycles_per_day_max must be positive")
	}
	return nil
}

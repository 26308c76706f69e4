// Package config loads the process-wide, immutable configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// FOODSAVER_* environment variables (optionally seeded from a .env file).
// The result is validated against an embedded CUE schema before use.
// Nothing here is hot-reloadable: the scheduler and forecast engine receive
// a copy at construction time.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

// Config is the complete configuration surface.
type Config struct {
	Database   Database   `yaml:"database" json:"database"`
	HTTP       HTTP       `yaml:"http" json:"http"`
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Restock    Restock    `yaml:"restock" json:"restock"`
	Forecast   Forecast   `yaml:"forecast" json:"forecast"`
}

// Database configures the SQLite store and its timeouts.
type Database struct {
	Path         string        `yaml:"path" json:"path"`
	MaxOpenConns int           `yaml:"max_open_conns" json:"max_open_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout" json:"busy_timeout"`

	// ReadTimeout bounds the scheduler's snapshot read.
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`
	// CommitTimeout bounds one batch commit, serializer wait included.
	CommitTimeout time.Duration `yaml:"commit_timeout" json:"commit_timeout"`
	// LockTimeout bounds the wait for the write serializer.
	LockTimeout time.Duration `yaml:"lock_timeout" json:"lock_timeout"`
}

// HTTP configures the query surface.
type HTTP struct {
	Addr    string `yaml:"addr" json:"addr"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// Simulation holds the parameters shared by the scheduler and the forecast.
type Simulation struct {
	UpdateInterval time.Duration         `yaml:"update_interval" json:"update_interval"`
	Demand         inventory.DemandRange `yaml:"demand" json:"demand"`
	SafetyStock    int                   `yaml:"safety_stock" json:"safety_stock"`
	MaxStock       int                   `yaml:"max_stock" json:"max_stock"`

	// Seed fixes the random source when non-zero.
	Seed uint64 `yaml:"seed" json:"seed"`
}

// Restock holds the daily restock table. A trigger with qty 0 restocks
// Quantity units.
type Restock struct {
	Quantity int                     `yaml:"quantity" json:"quantity"`
	Times    []inventory.RestockTime `yaml:"times" json:"times"`
}

// Forecast configures the Monte Carlo sell-out forecast.
type Forecast struct {
	Simulations  int `yaml:"simulations" json:"simulations"`
	HorizonHours int `yaml:"horizon_hours" json:"horizon_hours"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: Database{
			Path:          "foodsaver.db",
			MaxOpenConns:  4,
			BusyTimeout:   5 * time.Second,
			ReadTimeout:   500 * time.Millisecond,
			CommitTimeout: 5 * time.Second,
			LockTimeout:   5 * time.Second,
		},
		HTTP: HTTP{
			Addr:    ":5000",
			Enabled: true,
		},
		Simulation: Simulation{
			UpdateInterval: 60 * time.Second,
			Demand:         inventory.DemandRange{Min: 0, Max: 3},
			SafetyStock:    10,
			MaxStock:       100,
		},
		Restock: Restock{
			Quantity: 60,
			Times: []inventory.RestockTime{
				{Hour: 9, Minute: 0},
				{Hour: 14, Minute: 0},
				{Hour: 19, Minute: 0},
			},
		},
		Forecast: Forecast{
			Simulations:  1000,
			HorizonHours: 48,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// decodeYAML decodes over the defaults in cfg. Unknown fields are rejected
// so that typos fail loudly instead of silently keeping a default.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Schedule builds the immutable restock schedule, filling qty-less triggers
// with the default restock quantity.
func (c Config) Schedule() (inventory.RestockSchedule, error) {
	times := make([]inventory.RestockTime, len(c.Restock.Times))
	for i, t := range c.Restock.Times {
		if t.Qty == 0 {
			t.Qty = c.Restock.Quantity
		}
		times[i] = t
	}
	return inventory.NewRestockSchedule(times)
}

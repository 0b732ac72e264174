// Package config loads furrow's TOML configuration.
// Precedence: defaults <- config file <- environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvConfig names an explicit config file path.
	EnvConfig = "FURROW_CONFIG"
	// EnvDB overrides database.path.
	EnvDB = "FURROW_DB"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Planning PlanningConfig `toml:"planning"`
	Capacity CapacityConfig `toml:"capacity"`
	Log      LogConfig      `toml:"log"`
	Events   EventsConfig   `toml:"events"`
	HTTP     HTTPConfig     `toml:"http"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type CatalogConfig struct {
	// Path to a YAML variety table replacing the built-in one. Empty uses the default.
	Path string `toml:"path"`
}

type PlanningConfig struct {
	LookbackWeeks   int      `toml:"lookback_weeks"`
	TargetDays      float64  `toml:"target_days"`
	CountedStatuses []string `toml:"counted_statuses"`
	// CalibrateYield replaces catalog yields with smoothed harvest yields.
	CalibrateYield bool `toml:"calibrate_yield"`
}

// CapacityConfig is the free grow-room space per batch unit.
type CapacityConfig struct {
	Trays  int `toml:"trays"`
	Ports  int `toml:"ports"`
	Blocks int `toml:"blocks"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type EventsConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: defaultDBPath()},
		Planning: PlanningConfig{
			LookbackWeeks:   4,
			TargetDays:      7,
			CountedStatuses: []string{"placed", "confirmed", "delivered"},
		},
		Capacity: CapacityConfig{Trays: 40, Ports: 120, Blocks: 30},
		Log:      LogConfig{Level: "info"},
		Events:   EventsConfig{Topic: "furrow.batches"},
		HTTP:     HTTPConfig{Addr: ":8080"},
	}
}

func furrowDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".furrow")
}

func defaultDBPath() string {
	return filepath.Join(furrowDir(), "furrow.db")
}

// DefaultPath is the config file read when FURROW_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(furrowDir(), "config.toml")
}

// Load reads path (or FURROW_CONFIG, or DefaultPath when path is empty) over the
// defaults and applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if err := loadFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Database.Path = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes path onto cfg; keys absent from the file keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Planning.LookbackWeeks < 0 {
		return fmt.Errorf("planning.lookback_weeks must be >= 0, got %d", c.Planning.LookbackWeeks)
	}
	if c.Planning.TargetDays < 0 {
		return fmt.Errorf("planning.target_days must be >= 0, got %g", c.Planning.TargetDays)
	}
	if _, err := c.Statuses(); err != nil {
		return err
	}
	if c.Capacity.Trays < 0 || c.Capacity.Ports < 0 || c.Capacity.Blocks < 0 {
		return errors.New("capacity values must be >= 0")
	}
	return nil
}

// Statuses returns planning.counted_statuses as order statuses.
func (c *Config) Statuses() ([]domain.OrderStatus, error) {
	out := make([]domain.OrderStatus, 0, len(c.Planning.CountedStatuses))
	for _, s := range c.Planning.CountedStatuses {
		st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
		switch st {
		case domain.OrderPending, domain.OrderPlaced, domain.OrderConfirmed, domain.OrderDelivered, domain.OrderCancelled:
			out = append(out, st)
		default:
			return nil, fmt.Errorf("planning.counted_statuses: unknown order status %q", s)
		}
	}
	return out, nil
}

// FreeCapacity returns the capacity table keyed by batch unit.
func (c *Config) FreeCapacity() map[domain.Unit]int {
	return map[domain.Unit]int{
		domain.UnitTray:  c.Capacity.Trays,
		domain.UnitPort:  c.Capacity.Ports,
		domain.UnitBlock: c.Capacity.Blocks,
	}
}

// EventsEnabled reports whether batch events go to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.Events.Brokers) > 0
}

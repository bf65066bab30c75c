package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// Simulation holds all configuration for the targeting simulator.
type Simulation struct {
	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"`

	Arena  Arena         `yaml:"arena"`
	Actors []ActorConfig `yaml:"actors"`

	// Targeting is the default for every actor; actors may override
	// strategy and mode.
	Targeting Targeting `yaml:"targeting"`
	Unlocks   Unlocks   `yaml:"unlocks"`
	Metrics   Metrics   `yaml:"metrics"`

	Database         DatabaseConfig `yaml:"database"`
	SnapshotInterval time.Duration  `yaml:"snapshot_interval"`
}

// Arena describes the spawning area for enemies.
type Arena struct {
	Width        float64       `yaml:"width"`
	Height       float64       `yaml:"height"`
	WaveSize     int           `yaml:"wave_size"`
	MaxEnemies   int           `yaml:"max_enemies"`
	WaveInterval time.Duration `yaml:"wave_interval"`
	Seed         uint64        `yaml:"seed"` // 0 = random
}

// ActorConfig places one dragon in the arena.
type ActorConfig struct {
	Name            string                `yaml:"name"`
	X               float64               `yaml:"x"`
	Y               float64               `yaml:"y"`
	Range           float64               `yaml:"range"`
	Element         string                `yaml:"element"`
	DPS             float64               `yaml:"dps"` // damage per second against the current target
	Weights         model.ThreatWeights   `yaml:"threat_weights"`
	Strategy        model.StrategyName    `yaml:"strategy"`         // empty = targeting.primary_strategy
	PersistenceMode model.PersistenceMode `yaml:"persistence_mode"` // empty = targeting.persistence_mode
}

// Unlocks lists features available to every actor.
// Empty strategies means everything in targeting.enabled_strategies.
type Unlocks struct {
	Strategies []model.StrategyName    `yaml:"strategies"`
	Modes      []model.PersistenceMode `yaml:"modes"`
}

// Metrics controls timing collection.
type Metrics struct {
	Window     int  `yaml:"window"`
	LogSamples bool `yaml:"log_samples"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:     "info",
		TickInterval: 100 * time.Millisecond,
		Arena: Arena{
			Width:        2000,
			Height:       2000,
			WaveSize:     20,
			MaxEnemies:   300,
			WaveInterval: 5 * time.Second,
		},
		Actors: []ActorConfig{
			{Name: "ember", Range: 500, Element: "fire", DPS: 120},
		},
		Targeting: DefaultTargeting(),
		Metrics:   Metrics{Window: 256},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "dragon",
			Password: "dragon",
			DBName:   "dragon",
			SSLMode:  "disable",
		},
		SnapshotInterval: 10 * time.Second,
	}
}

// LoadSimulation loads simulator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Targeting.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = cfg.Targeting.UpdateInterval
	}

	return cfg, nil
}

// ForActor returns the targeting config for one actor with its overrides
// applied. A positive actor range replaces targeting.range.
func (s Simulation) ForActor(a ActorConfig) Targeting {
	t := s.Targeting.Clone()
	if a.Range > 0 {
		t.Range = a.Range
	}
	if a.Strategy != "" {
		t.PrimaryStrategy = a.Strategy
	}
	if a.PersistenceMode != "" {
		t.PersistenceMode = a.PersistenceMode
	}
	if !a.Weights.IsZero() {
		t.ThreatWeights = a.Weights
	}
	return t
}

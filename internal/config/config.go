// Package config loads the colony configuration from YAML with environment
// overrides for secrets and deployment paths.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/resolver"
	"github.com/talgya/colony/internal/sandbox"
	"github.com/talgya/colony/internal/work"
	"github.com/talgya/colony/internal/world"
)

// Environment overrides.
const (
	EnvAdminKey = "COLONY_ADMIN_KEY"
	EnvDBPath   = "COLONY_DB_PATH"
	EnvLogLevel = "COLONY_LOG_LEVEL"
)

// DefaultAgents is the bootstrap list, in run order.
var DefaultAgents = []string{
	"transfer-0", "carrier-0", "miner-1", "miner-0", "builder-1", "builder-0", "upgrader-0",
}

type Config struct {
	Region string   `yaml:"region"`
	Spawn  string   `yaml:"spawn"`
	Seed   int64    `yaml:"seed"` // Terrain seed; 0 keeps the region plain
	Agents []string `yaml:"agents"`

	Resolver ResolverConfig    `yaml:"resolver"`
	Work     WorkConfig        `yaml:"work"`
	World    WorldConfig       `yaml:"world"`
	Engine   EngineConfig      `yaml:"engine"`
	Links    []engine.LinkPair `yaml:"links,omitempty"` // In addition to the layout's own pairs
	API      APIConfig         `yaml:"api"`

	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
}

type ResolverConfig struct {
	UnitCapacity  int                    `yaml:"unit_capacity"`
	ParkAtStorage bool                   `yaml:"park_at_storage"`
	MinerOffsets  map[int]world.HexCoord `yaml:"miner_offsets"`
}

type WorkConfig struct {
	RepairPerWork int `yaml:"repair_per_work"`
	ReusePath     int `yaml:"reuse_path"`
}

type WorldConfig struct {
	Radius            int `yaml:"radius"`
	CreepLifetime     int `yaml:"creep_lifetime"`
	SpawnTicksPerPart int `yaml:"spawn_ticks_per_part"`
	SpawnRegen        int `yaml:"spawn_regen"`
	SpawnRegenCap     int `yaml:"spawn_regen_cap"`
	SourceRegenTicks  int `yaml:"source_regen_ticks"`
	DecayTicks        int `yaml:"decay_ticks"`
	RaidEvery         int `yaml:"raid_every"`
	RaidLength        int `yaml:"raid_length"`
}

type EngineConfig struct {
	IntervalMS  int     `yaml:"interval_ms"`
	Speed       float64 `yaml:"speed"`
	MaxTicks    uint64  `yaml:"max_ticks"`
	ReportEvery uint64  `yaml:"report_every"`
	SaveEvery   uint64  `yaml:"save_every"`
}

type APIConfig struct {
	Port       int    `yaml:"port"`
	AdminKey   string `yaml:"admin_key"`
	StreamRate int    `yaml:"stream_rate"` // Stream connections per IP per minute
}

// Default returns the built-in configuration.
func Default() Config {
	rc := resolver.DefaultConfig()
	wc := work.DefaultConfig()
	opts := sandbox.DefaultOptions()
	return Config{
		Region: opts.Region,
		Spawn:  "Spawn1",
		Seed:   42,
		Agents: append([]string(nil), DefaultAgents...),
		Resolver: ResolverConfig{
			UnitCapacity:  rc.UnitCapacity,
			ParkAtStorage: rc.ParkAtStorage,
			MinerOffsets:  rc.MinerOffsets,
		},
		Work: WorkConfig{
			RepairPerWork: wc.RepairPerWork,
			ReusePath:     wc.ReusePath,
		},
		World: WorldConfig{
			Radius:            opts.Radius,
			CreepLifetime:     opts.CreepLifetime,
			SpawnTicksPerPart: opts.SpawnTicksPerPart,
			SpawnRegen:        opts.SpawnRegen,
			SpawnRegenCap:     opts.SpawnRegenCap,
			SourceRegenTicks:  opts.SourceRegenTicks,
			DecayTicks:        opts.DecayTicks,
			RaidEvery:         1000,
			RaidLength:        opts.RaidLength,
		},
		Engine: EngineConfig{
			IntervalMS:  1000,
			Speed:       1,
			ReportEvery: 100,
			SaveEvery:   50,
		},
		API: APIConfig{
			Port:       8080,
			StreamRate: 10,
		},
		DBPath:   "data/colony.db",
		LogLevel: "info",
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides apply last, then the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Info("config file not found, using defaults", "path", path)
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAdminKey); v != "" {
		c.API.AdminKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	if len(c.Agents) == 0 {
		return errors.New("agents: list is empty")
	}
	seen := make(map[string]bool, len(c.Agents))
	for _, name := range c.Agents {
		if strings.TrimSpace(name) == "" {
			return errors.New("agents: empty name")
		}
		if seen[name] {
			return fmt.Errorf("agents: duplicate name %q", name)
		}
		seen[name] = true
	}
	if c.Region == "" {
		return errors.New("region: required")
	}
	if c.Spawn == "" {
		return errors.New("spawn: required")
	}
	if c.Resolver.UnitCapacity <= 0 {
		return fmt.Errorf("resolver.unit_capacity: must be positive, got %d", c.Resolver.UnitCapacity)
	}
	if extent := sandbox.DefaultLayout().Extent(); c.World.Radius < extent {
		return fmt.Errorf("world.radius: layout reaches %d hexes from the centre, got %d", extent, c.World.Radius)
	}
	if c.Engine.Speed < 0 {
		return fmt.Errorf("engine.speed: must not be negative, got %g", c.Engine.Speed)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolverSettings returns the resolver thresholds.
func (c Config) ResolverSettings() resolver.Config {
	return resolver.Config{
		UnitCapacity:  c.Resolver.UnitCapacity,
		ParkAtStorage: c.Resolver.ParkAtStorage,
		MinerOffsets:  c.Resolver.MinerOffsets,
	}
}

func (c Config) WorkSettings() work.Config {
	return work.Config{
		RepairPerWork: c.Work.RepairPerWork,
		UnitCapacity:  c.Resolver.UnitCapacity,
		ReusePath:     c.Work.ReusePath,
	}
}

// SandboxOptions returns the world rules. Terrain is left for the caller to
// generate from Seed.
func (c Config) SandboxOptions() sandbox.Options {
	return sandbox.Options{
		Region:            c.Region,
		Radius:            c.World.Radius,
		CreepLifetime:     c.World.CreepLifetime,
		SpawnTicksPerPart: c.World.SpawnTicksPerPart,
		SpawnRegen:        c.World.SpawnRegen,
		SpawnRegenCap:     c.World.SpawnRegenCap,
		SourceRegenTicks:  c.World.SourceRegenTicks,
		DecayTicks:        c.World.DecayTicks,
		RaidEvery:         c.World.RaidEvery,
		RaidLength:        c.World.RaidLength,
	}
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.Engine.IntervalMS) * time.Millisecond
}

// SlogLevel returns the configured log level. Validate rejects unknown names.
func (c Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", s)
}

// Package config loads run configuration from defaults, an optional YAML file,
// a .env file, and STARFIELD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/starfield/internal/balance"
	"github.com/talgya/starfield/internal/corp"
	"github.com/talgya/starfield/internal/world"
)

// CorporationConfig registers one corporation.
type CorporationConfig struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"` // logistics, tech_trader, miner
}

// ArchiveConfig selects where run reports are stored. An empty DSN disables the archive.
type ArchiveConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn" json:"dsn"`
}

// ServeConfig configures the read-only archive viewer.
type ServeConfig struct {
	Addr              string   `yaml:"addr" json:"addr"`
	Origins           []string `yaml:"origins" json:"origins"` // CORS allow-list
	RequestsPerSecond float64  `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int      `yaml:"burst" json:"burst"`
}

// Config holds everything a run needs.
type Config struct {
	Planets   int    `yaml:"planets" json:"planets"`
	Asteroids int    `yaml:"asteroids" json:"asteroids"`
	Routes    int    `yaml:"routes" json:"routes"`
	Steps     int    `yaml:"steps" json:"steps"`
	Seed      int64  `yaml:"seed" json:"seed"`     // 0 = nondeterministic
	Layout    string `yaml:"layout" json:"layout"` // uniform or clustered
	Strict    bool   `yaml:"strict" json:"strict"` // Verify invariants every tick

	Corporations []CorporationConfig `yaml:"corporations" json:"corporations"`
	Archive      ArchiveConfig       `yaml:"archive" json:"archive"`
	Serve        ServeConfig         `yaml:"serve" json:"serve"`
	LogLevel     string              `yaml:"log_level" json:"log_level"`
}

// Default returns the reference configuration. Entity counts are left at zero
// for the console prompt to fill in.
func Default() Config {
	return Config{
		Steps:  balance.DefaultSteps,
		Layout: world.LayoutName(world.LayoutUniform),
		Strict: true,
		Corporations: []CorporationConfig{
			{Name: "Logistics Corp", Kind: corp.KindName(corp.KindLogistics)},
			{Name: "Tech Trader Corp", Kind: corp.KindName(corp.KindTechTrader)},
			{Name: "Miner Corp", Kind: corp.KindName(corp.KindMiner)},
		},
		Archive: ArchiveConfig{Driver: "sqlite"},
		Serve: ServeConfig{
			Addr:              ":8080",
			Origins:           []string{"http://localhost:5173", "http://localhost:3000"},
			RequestsPerSecond: 5,
			Burst:             10,
		},
		LogLevel: "info",
	}
}

// Load builds a configuration from defaults, then path (if non-empty), then
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files are
// not an error.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded, using system environment", "error", err)
	}
}

// ApplyEnv overrides fields from STARFIELD_* variables.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"STARFIELD_PLANETS", &c.Planets},
		{"STARFIELD_ASTEROIDS", &c.Asteroids},
		{"STARFIELD_ROUTES", &c.Routes},
		{"STARFIELD_STEPS", &c.Steps},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("STARFIELD_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("STARFIELD_SEED: %w", err)
		}
		c.Seed = n
	}
	if v := os.Getenv("STARFIELD_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STARFIELD_STRICT: %w", err)
		}
		c.Strict = b
	}
	if v := os.Getenv("STARFIELD_LAYOUT"); v != "" {
		c.Layout = v
	}
	if v := os.Getenv("STARFIELD_DB_DRIVER"); v != "" {
		c.Archive.Driver = v
	}
	if v := os.Getenv("STARFIELD_DB"); v != "" {
		c.Archive.DSN = v
	}
	if v := os.Getenv("STARFIELD_ADDR"); v != "" {
		c.Serve.Addr = v
	}
	if v := os.Getenv("STARFIELD_CORS_ORIGINS"); v != "" {
		c.Serve.Origins = c.Serve.Origins[:0:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Serve.Origins = append(c.Serve.Origins, origin)
			}
		}
	}
	if v := os.Getenv("STARFIELD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validation errors.
var (
	ErrCount  = errors.New("config: entity counts must be positive")
	ErrSteps  = errors.New("config: steps must not be negative")
	ErrDriver = errors.New("config: unknown archive driver")
)

// Validate checks the configuration before any simulation state exists.
func (c Config) Validate() error {
	if c.Planets <= 0 || c.Asteroids <= 0 || c.Routes <= 0 {
		return fmt.Errorf("%w: planets=%d asteroids=%d routes=%d", ErrCount, c.Planets, c.Asteroids, c.Routes)
	}
	if c.Planets > balance.MaxPlanets || c.Asteroids > balance.MaxAsteroids {
		return fmt.Errorf("too many planets or asteroids: %d/%d planets, %d/%d asteroids",
			c.Planets, balance.MaxPlanets, c.Asteroids, balance.MaxAsteroids)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: %d", ErrSteps, c.Steps)
	}
	if _, err := world.ParseLayout(c.Layout); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, cc := range c.Corporations {
		if _, err := corp.ParseKind(cc.Kind); err != nil {
			return fmt.Errorf("config: corporation %q: %w", cc.Name, err)
		}
	}
	switch c.Archive.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrDriver, c.Archive.Driver)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

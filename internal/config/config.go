// Package config loads the TOML configuration of the hako profiling tools.
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/edwinsyarief/hako"
)

// Config is the root of a hako TOML configuration file.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Profile ProfileConfig `toml:"profile"`
	Logging LoggingConfig `toml:"logging"`
}

// EngineConfig holds the [engine] section, mapped onto EntityManager options.
type EngineConfig struct {
	ChunkCapacity   int `toml:"chunk_capacity"`
	InitialCapacity int `toml:"initial_capacity"`
}

// ProfileConfig holds the [profile] section read by the profiling harnesses.
type ProfileConfig struct {
	Rounds     int    `toml:"rounds"`
	Iterations int    `toml:"iterations"`
	Entities   int    `toml:"entities"`
	Path       string `toml:"path"` // output directory for pprof files
}

// LoggingConfig holds the [logging] section.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults and validates the result.
//
// Parameters:
//   - path: The configuration file. An empty path returns the defaults.
//
// Returns:
//   - The loaded configuration, or an error when the file cannot be read,
//     parsed or validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file is given: the engine
// defaults, a 50-round profile of 100000 entities and console logging at info.
func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			ChunkCapacity:   hako.DefaultChunkCapacity,
			InitialCapacity: 1024,
		},
		Profile: ProfileConfig{
			Rounds:     50,
			Iterations: 10000,
			Entities:   100000,
			Path:       ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the engine capacities are usable and that the logging
// level and format are known.
//
// Returns:
//   - nil when the configuration is valid, a descriptive error otherwise.
func (c *Config) Validate() error {
	if c.Engine.ChunkCapacity <= 0 {
		return eris.Errorf("engine.chunk_capacity must be positive, got %d", c.Engine.ChunkCapacity)
	}
	if c.Engine.InitialCapacity < 0 {
		return eris.Errorf("engine.initial_capacity must not be negative, got %d", c.Engine.InitialCapacity)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return eris.Wrapf(err, "logging.level")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return eris.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// EngineOptions converts the engine section into manager options.
func (c *Config) EngineOptions() []hako.Option {
	return []hako.Option{
		hako.WithChunkCapacity(c.Engine.ChunkCapacity),
		hako.WithInitialCapacity(c.Engine.InitialCapacity),
	}
}

// Logger builds the zerolog logger described by the logging section.
//
// Parameters:
//   - w: The destination. It is wrapped in a zerolog.ConsoleWriter when the
//     format is "console".
//
// Returns:
//   - A timestamped logger filtered at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.Logging.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

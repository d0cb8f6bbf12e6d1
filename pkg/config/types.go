package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent marcus configuration stored as config.toml
// in the .marcus/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Mock    MockConfig   `toml:"mock"`
	Memory  MemoryConfig `toml:"memory"`
	Log     LogConfig    `toml:"log"`
}

// ClientConfig holds settings for CLI commands that call the inference and
// memory service (e.g. marcus chat, marcus memory search).
// Durations are Go duration strings ("20s", "1m30s").
type ClientConfig struct {
	Target       string `toml:"target,omitempty"`
	Timeout      string `toml:"timeout,omitempty"`
	IdleTimeout  string `toml:"idle_timeout,omitempty"`
	Model        string `toml:"model,omitempty"`
	MapModels    bool   `toml:"map_models,omitempty"`
	DoneSentinel string `toml:"done_sentinel,omitempty"`
}

// MockConfig holds settings for the local mock service ("marcus mock").
type MockConfig struct {
	Listen              string `toml:"listen,omitempty"`
	Store               string `toml:"store,omitempty"`
	SQLitePath          string `toml:"sqlite_path,omitempty"`
	ChunkDelay          string `toml:"chunk_delay,omitempty"`
	EmbeddingDimensions uint   `toml:"embedding_dimensions,omitempty"`
}

// MemoryConfig holds defaults for the memory commands.
type MemoryConfig struct {
	Collection string `toml:"collection,omitempty"`
	K          uint   `toml:"k,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level,omitempty"`
	JSON  bool   `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func durationKey(key string, field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = v
			return nil
		},
	}
}

func uintKey(key string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func boolKey(key string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.target":        stringKey(func(c *Config) *string { return &c.Client.Target }),
	"client.timeout":       durationKey("client.timeout", func(c *Config) *string { return &c.Client.Timeout }),
	"client.idle_timeout":  durationKey("client.idle_timeout", func(c *Config) *string { return &c.Client.IdleTimeout }),
	"client.model":         stringKey(func(c *Config) *string { return &c.Client.Model }),
	"client.map_models":    boolKey("client.map_models", func(c *Config) *bool { return &c.Client.MapModels }),
	"client.done_sentinel": stringKey(func(c *Config) *string { return &c.Client.DoneSentinel }),

	"mock.listen":               stringKey(func(c *Config) *string { return &c.Mock.Listen }),
	"mock.store":                stringKey(func(c *Config) *string { return &c.Mock.Store }),
	"mock.sqlite_path":          stringKey(func(c *Config) *string { return &c.Mock.SQLitePath }),
	"mock.chunk_delay":          durationKey("mock.chunk_delay", func(c *Config) *string { return &c.Mock.ChunkDelay }),
	"mock.embedding_dimensions": uintKey("mock.embedding_dimensions", func(c *Config) *uint { return &c.Mock.EmbeddingDimensions }),

	"memory.collection": stringKey(func(c *Config) *string { return &c.Memory.Collection }),
	"memory.k":          uintKey("memory.k", func(c *Config) *uint { return &c.Memory.K }),

	"log.level": stringKey(func(c *Config) *string { return &c.Log.Level }),
	"log.json":  boolKey("log.json", func(c *Config) *bool { return &c.Log.JSON }),
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/marcus/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MARCUS_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MARCUS_CLIENT_TARGET, MARCUS_MOCK_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("MARCUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Client
	v.SetDefault("client.target", d.Client.Target)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.idle_timeout", d.Client.IdleTimeout)
	v.SetDefault("client.model", d.Client.Model)
	v.SetDefault("client.map_models", d.Client.MapModels)
	v.SetDefault("client.done_sentinel", d.Client.DoneSentinel)

	// Mock
	v.SetDefault("mock.listen", d.Mock.Listen)
	v.SetDefault("mock.store", d.Mock.Store)
	v.SetDefault("mock.sqlite_path", d.Mock.SQLitePath)
	v.SetDefault("mock.chunk_delay", d.Mock.ChunkDelay)
	v.SetDefault("mock.embedding_dimensions", d.Mock.EmbeddingDimensions)

	// Memory
	v.SetDefault("memory.collection", d.Memory.Collection)
	v.SetDefault("memory.k", d.Memory.K)

	// Log
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

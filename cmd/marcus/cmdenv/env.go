// Package cmdenv resolves the configuration shared by marcus subcommands:
// the viper precedence chain, the logger and the service client.
package cmdenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/marcus/pkg/client"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/logger"
	"github.com/papercomputeco/marcus/pkg/models"
)

// globalFlags are the persistent flags registered on the root command.
var globalFlags = []string{
	config.FlagTarget,
	config.FlagTimeout,
	config.FlagJSONLogs,
}

// Env is the resolved environment of one command invocation.
type Env struct {
	Viper  *viper.Viper
	Logger *slog.Logger

	// Out receives command output; logs go to the command's stderr.
	Out io.Writer
}

// Load reads config.toml from --config-dir (or the resolved .marcus/
// directory) and binds the global flags plus the given registry keys.
func Load(cmd *cobra.Command, flagKeys ...string) (*Env, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, append(globalFlags, flagKeys...))

	level, err := logger.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	debug, _ := cmd.Flags().GetBool("debug")

	opts := []logger.Option{
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithLevel(level),
		logger.WithPretty(true),
		logger.WithJSON(v.GetBool("log.json")),
	}
	if debug {
		opts = append(opts, logger.WithDebug(true))
	}

	return &Env{
		Viper:  v,
		Logger: logger.New(opts...),
		Out:    cmd.OutOrStdout(),
	}, nil
}

// Client builds a service client from the client.* keys. Model ids are
// validated against the default registry.
func (e *Env) Client() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:      e.Viper.GetString("client.target"),
		Timeout:      e.Viper.GetDuration("client.timeout"),
		IdleTimeout:  e.Viper.GetDuration("client.idle_timeout"),
		Models:       models.Default(),
		MapModels:    e.Viper.GetBool("client.map_models"),
		DoneSentinel: e.Viper.GetString("client.done_sentinel"),
		Logger:       e.Logger,
	})
}

// Model returns the configured model identifier.
func (e *Env) Model() string {
	return e.Viper.GetString("client.model")
}

// Context returns a context for cmd that is cancelled on interrupt, so
// Ctrl+C abandons an in-flight stream.
func Context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

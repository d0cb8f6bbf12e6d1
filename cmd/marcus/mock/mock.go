// Package mockcmder provides the mock command, which runs a local stand-in
// for the inference and memory service.
package mockcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/cmd/marcus/cmdenv"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/dotdir"
	"github.com/papercomputeco/marcus/pkg/logger"
	"github.com/papercomputeco/marcus/pkg/memory"
	"github.com/papercomputeco/marcus/pkg/memory/local"
	"github.com/papercomputeco/marcus/pkg/memory/sqlite"
	"github.com/papercomputeco/marcus/pkg/mockserver"
	"github.com/papercomputeco/marcus/pkg/models"
)

const (
	storeLocal  = "local"
	storeSQLite = "sqlite"

	defaultSQLiteFile = "memory.sqlite"
)

type mockCommander struct {
	listen        string
	store         string
	sqlitePath    string
	chunkDelay    time.Duration
	embeddingDims uint
	logFile       string
	models        []string

	configDir string
	logger    *slog.Logger
}

const mockLongDesc string = `Run a local mock of the inference and memory service.

The mock speaks the same wire contract as the real service: chat and text
completion (single-shot and streamed), embeddings, and memory add, get,
delete and search. Replies are deterministic, which makes it useful for
trying the CLI and for tests.

Every model with a provider mapping is served unless --models names the
ones to serve; requests for other models get a 404.

Memory is kept in process with --store local (the default), or in a SQLite
database with --store sqlite. The database defaults to memory.sqlite in the
.marcus/ directory.

Examples:
  marcus mock
  marcus mock --listen :8080 --chunk-delay 50ms
  marcus mock --models Llama3.2-1B,Llama3.2-3B
  marcus mock --store sqlite --sqlite-path ./memory.sqlite`

const mockShortDesc string = "Run a local mock service"

func NewMockCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: mockShortDesc,
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd,
				config.FlagListen,
				config.FlagStore,
				config.FlagSQLitePath,
				config.FlagChunkDelay,
				config.FlagEmbeddingDims,
			)
			if err != nil {
				return err
			}

			cmder.listen = env.Viper.GetString("mock.listen")
			cmder.store = env.Viper.GetString("mock.store")
			cmder.sqlitePath = env.Viper.GetString("mock.sqlite_path")
			cmder.chunkDelay = env.Viper.GetDuration("mock.chunk_delay")
			cmder.embeddingDims = env.Viper.GetUint("mock.embedding_dimensions")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cmder.logger = env.Logger
			if cmder.logFile != "" {
				f, err := os.OpenFile(cmder.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()

				fileLogger := logger.New(logger.WithJSON(true), logger.WithWriter(f))
				cmder.logger = logger.Multi(env.Logger, fileLogger)
			}

			ctx, cancel := cmdenv.Context(cmd)
			defer cancel()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStore, &cmder.store)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLitePath, &cmder.sqlitePath)
	config.AddDurationFlag(cmd, config.Flags, config.FlagChunkDelay, &cmder.chunkDelay)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().StringSliceVar(&cmder.models, "models", nil, "Serve only these models (default: every mapped model)")

	return cmd
}

func (c *mockCommander) run(ctx context.Context) error {
	registry, err := c.newRegistry()
	if err != nil {
		return err
	}

	store, err := c.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	server, err := mockserver.NewServer(mockserver.Config{
		ListenAddr:          c.listen,
		ChunkDelay:          c.chunkDelay,
		EmbeddingDimensions: int(c.embeddingDims),
		Models:              registry,
	}, store, c.logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down mock server")
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// newRegistry registers the models the mock serves.
func (c *mockCommander) newRegistry() (*models.Registry, error) {
	registry := models.Default()
	if len(c.models) == 0 {
		registry.RegisterAll()
		return registry, nil
	}

	for _, id := range c.models {
		if err := registry.Register(models.Model{ID: id}); err != nil {
			return nil, err
		}
	}
	c.logger.Info("serving models", "models", c.models)
	return registry, nil
}

func (c *mockCommander) newStore() (memory.Driver, error) {
	switch c.store {
	case storeLocal:
		c.logger.Info("using in-memory store")
		return local.NewDriver(), nil

	case storeSQLite:
		path, err := c.resolveSQLitePath()
		if err != nil {
			return nil, err
		}

		driver, err := sqlite.NewDriver(sqlite.Config{DBPath: path}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		c.logger.Info("using SQLite store", "path", path)
		return driver, nil

	default:
		return nil, fmt.Errorf("%w: %q (available: %s, %s)", memory.ErrUnknownStore, c.store, storeLocal, storeSQLite)
	}
}

// resolveSQLitePath returns --sqlite-path, or memory.sqlite in the
// .marcus/ directory.
func (c *mockCommander) resolveSQLitePath() (string, error) {
	if c.sqlitePath != "" {
		return c.sqlitePath, nil
	}

	ddm := dotdir.NewManager()
	dir, err := ddm.Target(c.configDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir, err = ddm.HomeDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, defaultSQLiteFile), nil
}

// Package configcmder provides the config command for managing persistent
// marcus configuration stored in the .marcus/ directory.
package configcmder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
)

const configLongDesc string = `Manage persistent marcus configuration.

Configuration is stored as config.toml in the .marcus/ directory and provides
default values for command flags. Environment variables (MARCUS_CLIENT_TARGET,
MARCUS_MOCK_LISTEN, ...) override the file, and CLI flags always take
precedence over both.

Keys use dotted notation matching the TOML section structure:
  client.target, client.timeout, client.idle_timeout, client.model,
  client.map_models, client.done_sentinel,
  mock.listen, mock.store, mock.sqlite_path, mock.chunk_delay,
  mock.embedding_dimensions,
  memory.collection, memory.k,
  log.level, log.json

Use subcommands to get, set, or list configuration values:
  marcus config set <key> <value>    Set a configuration value
  marcus config get <key>            Get a configuration value
  marcus config list                 List all configuration values

Examples:
  marcus config set client.target http://localhost:8321
  marcus config set client.timeout 1m
  marcus config get client.model
  marcus config list`

const configShortDesc string = "Manage persistent marcus configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

// envName is the MARCUS_ variable that overrides key at runtime.
func envName(key string) string {
	return "MARCUS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// splitKey splits a dotted key into its TOML section and field.
func splitKey(key string) (section, field string) {
	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return "", key
	}
	return section, field
}

// printOverride notes an environment variable that shadows the stored value.
func printOverride(w io.Writer, key string) {
	name := envName(key)
	if v, ok := os.LookupEnv(name); ok {
		fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("overridden by %s=%s", name, v)))
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

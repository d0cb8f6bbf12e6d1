package configcmder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
)

const listLongDesc string = `Show every marcus setting grouped by section.

Settings are printed under their config.toml section ([client], [mock],
[memory], [log]). Keys shadowed by a MARCUS_ environment variable are
marked with the variable name.

Examples:
  marcus config list
  marcus config list --config-dir ./project/.marcus`

const listShortDesc string = "Show every setting grouped by section"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd.OutOrStdout(), configDir)
		},
	}

	return cmd
}

func runList(w io.Writer, configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(w, cfger)

	keys := config.ValidConfigKeys()

	width := 0
	for _, k := range keys {
		_, field := splitKey(k)
		width = max(width, len(field))
	}

	current := ""
	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		section, field := splitKey(key)
		if section != current {
			if current != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", cliui.NameStyle.Render("["+section+"]"))
			current = section
		}

		rendered := cliui.DimStyle.Render("<not set>")
		if value != "" {
			rendered = cliui.ValueStyle.Render(fmt.Sprintf("%q", value))
		}
		line := fmt.Sprintf("    %s  %s", cliui.KeyStyle.Render(fmt.Sprintf("%-*s", width, field)), rendered)
		if name := envName(key); os.Getenv(name) != "" {
			line += "  " + cliui.DimStyle.Render("(overridden by "+name+")")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	return nil
}

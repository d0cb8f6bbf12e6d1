package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
)

const getLongDesc string = `Show the stored value of one marcus setting.

Reads the key from .marcus/config.toml. When a MARCUS_ environment variable
for the same key is set, it is shown as well since it wins over the file
when commands run.

Examples:
  marcus config get client.target
  marcus config get client.model
  MARCUS_MOCK_STORE=sqlite marcus config get mock.store`

const getShortDesc string = "Show the stored value of a setting"

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd.OutOrStdout(), args[0], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runGet(w io.Writer, key, configDir string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(w, cfger)

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	rendered := cliui.DimStyle.Render("<not set>")
	if value != "" {
		rendered = cliui.ValueStyle.Render(value)
	}
	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), rendered)
	printOverride(w, key)

	return nil
}

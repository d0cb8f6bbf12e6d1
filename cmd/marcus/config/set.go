package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
)

const setLongDesc string = `Store a marcus setting in .marcus/config.toml.

The value is checked against the key's type before it is written:
durations use Go syntax ("20s", "1m30s"), booleans accept true or false,
and counts must be whole numbers. Stored values become the defaults for
chat, complete, embed, memory and mock flags.

Examples:
  marcus config set client.target http://localhost:8321
  marcus config set client.model Llama3.2-1B
  marcus config set client.map_models true
  marcus config set mock.store sqlite
  marcus config set memory.k 5`

const setShortDesc string = "Store a setting in config.toml"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(cmd.OutOrStdout(), args[0], args[1], configDir)
		},
		ValidArgsFunction: completeKeys,
	}

	return cmd
}

func runSet(w io.Writer, key, value, configDir string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	printTarget(w, cfger)

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	printOverride(w, key)
	return nil
}

// Package modelscmder provides the models command.
package modelscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/cmd/marcus/cmdenv"
	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/models"
)

const modelsLongDesc string = `List the model identifiers marcus recognizes.

Each identifier is shown with the provider model it maps to. Identifiers
without a mapping are rejected before a request is sent.`

const modelsShortDesc string = "List known models"

func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, config.FlagModel)
			if err != nil {
				return err
			}
			return run(env)
		},
	}

	var model string
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &model)

	return cmd
}

func run(env *cmdenv.Env) error {
	registry := models.Default()
	current := env.Model()

	maxLen := 0
	for _, id := range models.Known {
		maxLen = max(maxLen, len(id))
	}

	for _, id := range models.Known {
		marker := " "
		if id == current {
			marker = cliui.SuccessMark
		}

		name := fmt.Sprintf("%-*s", maxLen, id)
		providerID, err := registry.MapToProvider(id)
		if err != nil {
			fmt.Fprintf(env.Out, "  %s %s  %s\n", marker, cliui.DimStyle.Render(name), cliui.DimStyle.Render("<unsupported>"))
			continue
		}
		fmt.Fprintf(env.Out, "  %s %s  %s\n", marker, cliui.NameStyle.Render(name), cliui.ValueStyle.Render(providerID))
	}

	if err := registry.Validate(current); err != nil {
		fmt.Fprintf(env.Out, "\n  %s configured model cannot be used: %v\n", cliui.FailMark, err)
	}
	return nil
}

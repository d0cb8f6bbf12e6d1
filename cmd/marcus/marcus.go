// Package marcuscmder
package marcuscmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/marcus/cmd/marcus/chat"
	completecmder "github.com/papercomputeco/marcus/cmd/marcus/complete"
	configcmder "github.com/papercomputeco/marcus/cmd/marcus/config"
	embedcmder "github.com/papercomputeco/marcus/cmd/marcus/embed"
	initcmder "github.com/papercomputeco/marcus/cmd/marcus/init"
	memorycmder "github.com/papercomputeco/marcus/cmd/marcus/memory"
	mockcmder "github.com/papercomputeco/marcus/cmd/marcus/mock"
	modelscmder "github.com/papercomputeco/marcus/cmd/marcus/models"
	versioncmder "github.com/papercomputeco/marcus/cmd/version"
	"github.com/papercomputeco/marcus/pkg/client"
	"github.com/papercomputeco/marcus/pkg/config"
)

const marcusLongDesc string = `Marcus is a client for a streaming inference and memory service.

Talk to a service using:
  marcus chat       Chat with a model
  marcus complete   Complete a text prompt
  marcus embed      Embed text
  marcus memory     Add, get, delete and search memory documents

Run a local stand-in for the service using:
  marcus mock`

const marcusShortDesc string = "Marcus - inference and memory client"

func NewMarcusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "marcus",
		Short:         marcusShortDesc,
		Long:          marcusLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := config.NewDefaultConfig()

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .marcus/ config directory")

	target := config.Flags[config.FlagTarget]
	cmd.PersistentFlags().StringP(target.Name, target.Shorthand, defaults.Client.Target, target.Description)

	timeout := config.Flags[config.FlagTimeout]
	cmd.PersistentFlags().Duration(timeout.Name, client.DefaultTimeout, timeout.Description)

	jsonLogs := config.Flags[config.FlagJSONLogs]
	cmd.PersistentFlags().Bool(jsonLogs.Name, defaults.Log.JSON, jsonLogs.Description)

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(completecmder.NewCompleteCmd())
	cmd.AddCommand(embedcmder.NewEmbedCmd())
	cmd.AddCommand(memorycmder.NewMemoryCmd())
	cmd.AddCommand(modelscmder.NewModelsCmd())
	cmd.AddCommand(mockcmder.NewMockCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

// Package memorycmder provides the memory commands for managing documents in
// a memory collection.
package memorycmder

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/cmd/marcus/cmdenv"
	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/client"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/utils"
)

// maxTextWidth caps document text in the human-readable listing. --raw
// prints it in full.
const maxTextWidth = 120

const memoryLongDesc string = `Add, get, delete and search documents in a memory collection.

The collection defaults to memory.collection from the config
("default" unless set). Use --raw to print the service response as JSON.

Examples:
  marcus memory add "Go is a statically typed language" "Rust has a borrow checker"
  marcus memory add --id go-doc --meta source=wiki "Go was designed at Google"
  marcus memory get go-doc
  marcus memory search -k 3 "typed language"
  marcus memory delete go-doc`

const memoryShortDesc string = "Manage memory documents"

func NewMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: memoryShortDesc,
		Long:  memoryLongDesc,
	}

	cmd.PersistentFlags().Bool("raw", false, "Print the raw JSON response")

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newSearchCmd())

	return cmd
}

// memoryCommander holds what every memory subcommand needs.
type memoryCommander struct {
	collection string
	raw        bool

	env    *cmdenv.Env
	client *client.Client
}

// addCollectionFlag registers --collection on cmd.
func (m *memoryCommander) addCollectionFlag(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagCollection, &m.collection)
}

// setup resolves the environment and client before a subcommand runs.
func (m *memoryCommander) setup(cmd *cobra.Command, flagKeys ...string) error {
	var err error
	m.env, err = cmdenv.Load(cmd, append([]string{config.FlagCollection}, flagKeys...)...)
	if err != nil {
		return err
	}

	m.raw, _ = cmd.Flags().GetBool("raw")
	m.collection = m.env.Viper.GetString("memory.collection")

	m.client, err = m.env.Client()
	return err
}

// run executes fn with an interruptible context.
func (m *memoryCommander) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, cancel := cmdenv.Context(cmd)
	defer cancel()
	return fn(ctx)
}

// printRaw writes resp as JSON when --raw is set and reports whether it did.
func (m *memoryCommander) printRaw(resp llm.Response) bool {
	if !m.raw {
		return false
	}
	fmt.Fprintln(m.env.Out, resp.String())
	return true
}

func printDocument(w io.Writer, doc llm.Document) {
	fmt.Fprintf(w, "  %s  %s\n", cliui.NameStyle.Render(doc.ID), cliui.ValueStyle.Render(utils.Truncate(doc.Text, maxTextWidth)))
	for _, k := range slices.Sorted(maps.Keys(doc.Metadata)) {
		fmt.Fprintf(w, "      %s %s\n",
			cliui.KeyStyle.Render(k+":"),
			cliui.DimStyle.Render(fmt.Sprint(doc.Metadata[k])),
		)
	}
}

package memorycmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/llm"
)

type searchCommander struct {
	memoryCommander

	k uint
}

func newSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search a collection",
		Long: `Search a collection and print the best matching documents first.

The query is the arguments joined by spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.setup(cmd, config.FlagK); err != nil {
				return err
			}
			return cmder.run(cmd, func(ctx context.Context) error {
				return cmder.search(ctx, strings.Join(args, " "))
			})
		},
	}

	cmder.addCollectionFlag(cmd)
	config.AddUintFlag(cmd, config.Flags, config.FlagK, &cmder.k)

	return cmd
}

func (c *searchCommander) search(ctx context.Context, query string) error {
	k := c.env.Viper.GetInt("memory.k")

	resp, err := c.client.MemorySearch(ctx, c.collection, query, k)
	if err != nil {
		return err
	}
	if c.printRaw(resp) {
		return nil
	}

	var found llm.MemorySearchResponse
	if err := resp.Decode(&found); err != nil {
		return fmt.Errorf("decoding memory search response: %w", err)
	}

	if len(found.Results) == 0 {
		fmt.Fprintf(c.env.Out, "  %s\n", cliui.DimStyle.Render("No matches."))
		return nil
	}
	for i, hit := range found.Results {
		fmt.Fprintf(c.env.Out, "%s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%2d.", i+1)),
			cliui.ScoreStyle.Render(fmt.Sprintf("%.3f", hit.Score)),
		)
		printDocument(c.env.Out, hit.Document)
	}
	return nil
}

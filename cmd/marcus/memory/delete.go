package memorycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/llm"
)

func newDeleteCmd() *cobra.Command {
	cmder := &memoryCommander{}

	cmd := &cobra.Command{
		Use:   "delete <id...>",
		Short: "Delete documents by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.setup(cmd); err != nil {
				return err
			}
			return cmder.run(cmd, func(ctx context.Context) error {
				return cmder.remove(ctx, args)
			})
		},
	}

	cmder.addCollectionFlag(cmd)

	return cmd
}

func (c *memoryCommander) remove(ctx context.Context, ids []string) error {
	resp, err := c.client.MemoryDelete(ctx, c.collection, ids)
	if err != nil {
		return err
	}
	if c.printRaw(resp) {
		return nil
	}

	var deleted llm.MemoryDeleteResponse
	if err := resp.Decode(&deleted); err != nil {
		return fmt.Errorf("decoding memory delete response: %w", err)
	}

	for _, id := range deleted.Deleted {
		fmt.Fprintf(c.env.Out, "  %s Deleted %s\n", cliui.SuccessMark, cliui.NameStyle.Render(id))
	}
	if len(deleted.Deleted) < len(ids) {
		fmt.Fprintf(c.env.Out, "  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d of %d ids were not found.", len(ids)-len(deleted.Deleted), len(ids))))
	}
	return nil
}

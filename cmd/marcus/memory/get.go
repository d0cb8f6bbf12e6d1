package memorycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/llm"
)

func newGetCmd() *cobra.Command {
	cmder := &memoryCommander{}

	cmd := &cobra.Command{
		Use:   "get <id...>",
		Short: "Get documents by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.setup(cmd); err != nil {
				return err
			}
			return cmder.run(cmd, func(ctx context.Context) error {
				return cmder.get(ctx, args)
			})
		},
	}

	cmder.addCollectionFlag(cmd)

	return cmd
}

func (c *memoryCommander) get(ctx context.Context, ids []string) error {
	resp, err := c.client.MemoryGet(ctx, c.collection, ids)
	if err != nil {
		return err
	}
	if c.printRaw(resp) {
		return nil
	}

	var got llm.MemoryGetResponse
	if err := resp.Decode(&got); err != nil {
		return fmt.Errorf("decoding memory get response: %w", err)
	}

	if len(got.Documents) == 0 {
		fmt.Fprintf(c.env.Out, "  %s\n", cliui.DimStyle.Render("No documents found."))
		return nil
	}
	for _, doc := range got.Documents {
		printDocument(c.env.Out, doc)
	}
	return nil
}

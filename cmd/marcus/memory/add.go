package memorycmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/llm"
)

type addCommander struct {
	memoryCommander

	ids  []string
	meta []string
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add documents to a collection",
		Long: `Add one document per argument to a collection.

Ids given with --id are assigned to the documents in order; documents
without one get an id from the service. --meta key=value pairs are
attached to every document.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.setup(cmd); err != nil {
				return err
			}
			return cmder.run(cmd, func(ctx context.Context) error {
				return cmder.add(ctx, args)
			})
		},
	}

	cmder.addCollectionFlag(cmd)
	cmd.Flags().StringSliceVar(&cmder.ids, "id", nil, "Document id, in argument order (repeatable)")
	cmd.Flags().StringArrayVar(&cmder.meta, "meta", nil, "Metadata key=value attached to every document (repeatable)")

	return cmd
}

func (c *addCommander) add(ctx context.Context, texts []string) error {
	if len(c.ids) > len(texts) {
		return fmt.Errorf("got %d ids for %d documents", len(c.ids), len(texts))
	}

	metadata, err := parseMetadata(c.meta)
	if err != nil {
		return err
	}

	docs := make([]llm.Document, len(texts))
	for i, text := range texts {
		docs[i] = llm.Document{Text: text, Metadata: metadata}
		if i < len(c.ids) {
			docs[i].ID = c.ids[i]
		}
	}

	resp, err := c.client.MemoryAdd(ctx, c.collection, docs)
	if err != nil {
		return err
	}
	if c.printRaw(resp) {
		return nil
	}

	var added llm.MemoryAddResponse
	if err := resp.Decode(&added); err != nil {
		return fmt.Errorf("decoding memory add response: %w", err)
	}

	for _, id := range added.IDs {
		fmt.Fprintf(c.env.Out, "  %s Added %s\n", cliui.SuccessMark, cliui.NameStyle.Render(id))
	}
	return nil
}

func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	metadata := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		metadata[k] = v
	}
	return metadata, nil
}

// Package embedcmder provides the embed command.
package embedcmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/cmd/marcus/cmdenv"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/llm"
)

type embedCommander struct {
	model string

	env *cmdenv.Env
}

const embedLongDesc string = `Compute embeddings for one or more texts.

Each argument is embedded separately. Vectors are printed one JSON array
per line, in argument order.

Examples:
  marcus embed "hello world" "goodbye world"`

const embedShortDesc string = "Embed text"

func NewEmbedCmd() *cobra.Command {
	cmder := &embedCommander{}

	cmd := &cobra.Command{
		Use:   "embed <text...>",
		Short: embedShortDesc,
		Long:  embedLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.env, err = cmdenv.Load(cmd, config.FlagModel)
			if err != nil {
				return err
			}

			ctx, cancel := cmdenv.Context(cmd)
			defer cancel()

			return cmder.run(ctx, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)

	return cmd
}

func (c *embedCommander) run(ctx context.Context, texts []string) error {
	cl, err := c.env.Client()
	if err != nil {
		return err
	}

	resp, err := cl.Embeddings(ctx, llm.EmbeddingsRequest{
		Model: c.env.Model(),
		Input: texts,
	})
	if err != nil {
		return err
	}

	var embeddings llm.EmbeddingsResponse
	if err := resp.Decode(&embeddings); err != nil {
		return fmt.Errorf("decoding embeddings: %w", err)
	}

	enc := json.NewEncoder(c.env.Out)
	for _, vec := range embeddings.Embeddings {
		if err := enc.Encode(vec); err != nil {
			return err
		}
	}
	return nil
}

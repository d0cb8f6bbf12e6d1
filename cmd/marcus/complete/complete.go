// Package completecmder provides the complete command for text completion.
package completecmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/cmd/marcus/cmdenv"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/llm"
)

type completeCommander struct {
	model        string
	stream       bool
	idleTimeout  time.Duration
	doneSentinel string

	env *cmdenv.Env
}

const completeLongDesc string = `Complete a text prompt with the text completion endpoint.

Examples:
  marcus complete "Once upon a time"
  marcus complete --stream -m Llama3.2-1B "The three laws of robotics are"`

const completeShortDesc string = "Complete a text prompt"

func NewCompleteCmd() *cobra.Command {
	cmder := &completeCommander{}

	cmd := &cobra.Command{
		Use:   "complete <prompt...>",
		Short: completeShortDesc,
		Long:  completeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.env, err = cmdenv.Load(cmd,
				config.FlagModel,
				config.FlagIdleTimeout,
				config.FlagDoneSentinel,
			)
			if err != nil {
				return err
			}

			ctx, cancel := cmdenv.Context(cmd)
			defer cancel()

			return cmder.run(ctx, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddDurationFlag(cmd, config.Flags, config.FlagIdleTimeout, &cmder.idleTimeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagDoneSentinel, &cmder.doneSentinel)
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Stream the completion as it is generated")

	return cmd
}

func (c *completeCommander) run(ctx context.Context, prompt string) error {
	cl, err := c.env.Client()
	if err != nil {
		return err
	}

	req := llm.CompletionRequest{
		Model:  c.env.Model(),
		Prompt: prompt,
	}

	if c.stream {
		r, err := cl.TextCompletionStream(ctx, req)
		if err != nil {
			return err
		}
		_, err = cmdenv.PrintStream(c.env.Out, r, c.env.Logger)
		fmt.Fprintln(c.env.Out)
		return err
	}

	resp, err := cl.TextCompletion(ctx, req)
	if err != nil {
		return err
	}

	var completion llm.TextCompletionResponse
	if err := resp.Decode(&completion); err != nil {
		return fmt.Errorf("decoding text completion: %w", err)
	}

	cmdenv.PrintText(c.env.Out, completion.Content)
	return nil
}

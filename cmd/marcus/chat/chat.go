// Package chatcmder provides the chat command for talking to a model through
// the chat completion endpoint.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/marcus/cmd/marcus/cmdenv"
	"github.com/papercomputeco/marcus/pkg/cliui"
	"github.com/papercomputeco/marcus/pkg/client"
	"github.com/papercomputeco/marcus/pkg/config"
	"github.com/papercomputeco/marcus/pkg/dotdir"
	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/stream"
)

type chatCommander struct {
	model        string
	system       string
	rawOut       string
	stream       bool
	cont         bool
	reset        bool
	idleTimeout  time.Duration
	doneSentinel string
	mapModels    bool

	configDir string
	env       *cmdenv.Env
	client    *client.Client
	tee       io.Writer
}

const chatLongDesc string = `Chat with a model through the chat completion endpoint.

With a message argument a single turn is sent and the reply printed.
Without one, an interactive session reads messages from stdin until
/exit or EOF.

With --continue the conversation is loaded from and saved to the
.marcus/ directory, so later invocations pick up where this one left off.
Use --reset to start the saved conversation over.

Examples:
  marcus chat "What is the capital of France?"
  marcus chat --stream -m Llama3.2-1B "Write a haiku about Go"
  marcus chat --continue
  marcus chat --stream --raw-out frames.sse "Hello"`

const chatShortDesc string = "Chat with a model"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.env, err = cmdenv.Load(cmd,
				config.FlagModel,
				config.FlagIdleTimeout,
				config.FlagDoneSentinel,
				config.FlagMapModels,
			)
			if err != nil {
				return err
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			ctx, cancel := cmdenv.Context(cmd)
			defer cancel()

			return cmder.run(ctx, cmd.InOrStdin(), args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddDurationFlag(cmd, config.Flags, config.FlagIdleTimeout, &cmder.idleTimeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagDoneSentinel, &cmder.doneSentinel)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMapModels, &cmder.mapModels)
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Stream the reply as it is generated")
	cmd.Flags().StringVar(&cmder.system, "system", "", "System prompt for a new conversation")
	cmd.Flags().StringVar(&cmder.rawOut, "raw-out", "", "Write the raw stream bytes to this file")
	cmd.Flags().BoolVar(&cmder.cont, "continue", false, "Resume and save the conversation in the .marcus/ directory")
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Clear the saved conversation first")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, in io.Reader, args []string) error {
	var err error
	c.client, err = c.env.Client()
	if err != nil {
		return err
	}

	if c.rawOut != "" {
		f, err := os.Create(c.rawOut)
		if err != nil {
			return fmt.Errorf("creating raw output file: %w", err)
		}
		defer f.Close()
		c.tee = f
	}

	ddm := dotdir.NewManager()
	if c.reset {
		if err := ddm.ClearConversation(c.configDir); err != nil {
			return err
		}
	}

	conv := &dotdir.Conversation{}
	if c.cont {
		saved, err := ddm.LoadConversation(c.configDir)
		if err != nil {
			return err
		}
		if saved != nil {
			conv = saved
			c.env.Logger.Debug("resuming conversation", "messages", len(conv.Messages))
		}
	}
	conv.Model = c.env.Model()

	if len(conv.Messages) == 0 && c.system != "" {
		conv.Messages = append(conv.Messages, llm.NewTextMessage("system", c.system))
	}

	if len(args) > 0 {
		if err := c.turn(ctx, conv, strings.Join(args, " ")); err != nil {
			return err
		}
	} else if err := c.interactive(ctx, in, conv); err != nil {
		return err
	}

	if c.cont {
		return ddm.SaveConversation(conv, c.configDir)
	}
	return nil
}

func (c *chatCommander) interactive(ctx context.Context, in io.Reader, conv *dotdir.Conversation) error {
	out := c.env.Out

	fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(conv.Model))
	if n := len(conv.Messages); n > 0 {
		fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("Resuming conversation (%d messages)", n)))
	}
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		fmt.Fprint(out, cliui.AssistantPrompt)
		if err := c.turn(ctx, conv, input); err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(out, "\n  %s %v\n", cliui.FailMark, err)
			continue
		}
		fmt.Fprintln(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// turn sends the conversation plus input and appends both the user message
// and the reply to conv. On failure conv is left unchanged.
func (c *chatCommander) turn(ctx context.Context, conv *dotdir.Conversation, input string) error {
	req := llm.ChatRequest{
		Model:    conv.Model,
		Messages: append(conv.Messages[:len(conv.Messages):len(conv.Messages)], llm.NewTextMessage("user", input)),
	}

	var reply string
	var err error
	if c.stream {
		reply, err = c.streamReply(ctx, req)
	} else {
		reply, err = c.reply(ctx, req)
	}
	if err != nil {
		return err
	}

	conv.Messages = append(req.Messages, llm.NewTextMessage("assistant", reply))
	return nil
}

func (c *chatCommander) streamReply(ctx context.Context, req llm.ChatRequest) (string, error) {
	var opts []stream.Option
	if c.tee != nil {
		opts = append(opts, stream.WithTee(c.tee))
	}

	r, err := c.client.ChatCompletionStream(ctx, req, opts...)
	if err != nil {
		return "", err
	}

	reply, err := cmdenv.PrintStream(c.env.Out, r, c.env.Logger)
	fmt.Fprintln(c.env.Out)
	return reply, err
}

func (c *chatCommander) reply(ctx context.Context, req llm.ChatRequest) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	var completion llm.CompletionResponse
	if err := resp.Decode(&completion); err != nil {
		return "", fmt.Errorf("decoding chat completion: %w", err)
	}

	reply := completion.CompletionMessage.Content
	cmdenv.PrintText(c.env.Out, reply)
	return reply, nil
}

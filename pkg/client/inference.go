package client

import (
	"context"
	"net/http"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/stream"
)

const (
	pathChatCompletion = "/inference/chat_completion"
	pathTextCompletion = "/inference/text_completion"
	pathEmbeddings     = "/inference/embeddings"
)

// ChatCompletion sends req with stream=false and returns the completion as
// one JSON value (see llm.CompletionResponse).
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (llm.Response, error) {
	if err := c.prepareChat(&req, false); err != nil {
		return nil, err
	}
	return c.call(ctx, "chat_completion", http.MethodPost, pathChatCompletion, nil, req)
}

// ChatCompletionStream sends req with stream=true and returns a Reader over
// the streamed events. The caller must drain or Close it.
func (c *Client) ChatCompletionStream(ctx context.Context, req llm.ChatRequest, opts ...stream.Option) (*stream.Reader, error) {
	if err := c.prepareChat(&req, true); err != nil {
		return nil, err
	}
	return c.openStream(ctx, "chat_completion_stream", pathChatCompletion, req, opts)
}

// TextCompletion sends req with stream=false (see
// llm.TextCompletionResponse).
func (c *Client) TextCompletion(ctx context.Context, req llm.CompletionRequest) (llm.Response, error) {
	if err := c.prepareCompletion(&req, false); err != nil {
		return nil, err
	}
	return c.call(ctx, "text_completion", http.MethodPost, pathTextCompletion, nil, req)
}

// TextCompletionStream sends req with stream=true.
func (c *Client) TextCompletionStream(ctx context.Context, req llm.CompletionRequest, opts ...stream.Option) (*stream.Reader, error) {
	if err := c.prepareCompletion(&req, true); err != nil {
		return nil, err
	}
	return c.openStream(ctx, "text_completion_stream", pathTextCompletion, req, opts)
}

// Embeddings returns one embedding per input (see llm.EmbeddingsResponse).
func (c *Client) Embeddings(ctx context.Context, req llm.EmbeddingsRequest) (llm.Response, error) {
	model, err := c.model(req.Model)
	if err != nil {
		return nil, err
	}
	if len(req.Input) == 0 {
		return nil, llm.NewValidationError("input", "must not be empty")
	}
	req.Model = model

	return c.call(ctx, "embeddings", http.MethodPost, pathEmbeddings, nil, req)
}

func (c *Client) prepareChat(req *llm.ChatRequest, streaming bool) error {
	model, err := c.model(req.Model)
	if err != nil {
		return err
	}
	if len(req.Messages) == 0 {
		return llm.NewValidationError("messages", "must not be empty")
	}

	req.Model = model
	req.Stream = streaming
	return nil
}

func (c *Client) prepareCompletion(req *llm.CompletionRequest, streaming bool) error {
	model, err := c.model(req.Model)
	if err != nil {
		return err
	}
	if req.Prompt == "" {
		return llm.NewValidationError("prompt", "is required")
	}

	req.Model = model
	req.Stream = streaming
	return nil
}

package mockserver

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

const stopEndOfTurn = "end_of_turn"

func (s *Server) handleChatCompletion(c *fiber.Ctx) error {
	var req llm.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Model == "" {
		return badRequest(c, "model is required")
	}
	if !s.serves(req.Model) {
		return modelNotServed(c, req.Model)
	}
	if len(req.Messages) == 0 {
		return badRequest(c, "messages are required")
	}

	reply := chatReply(req.Messages)

	if !req.Stream {
		return c.JSON(llm.CompletionResponse{
			CompletionMessage: llm.NewTextMessage("assistant", reply),
			StopReason:        stopEndOfTurn,
		})
	}

	events := []any{
		llm.ChatStreamEvent{Event: llm.ChatStreamDelta{EventType: "start"}},
	}
	for _, tok := range tokens(reply) {
		events = append(events, llm.ChatStreamEvent{
			Event: llm.ChatStreamDelta{EventType: "progress", Delta: tok},
		})
	}
	events = append(events, llm.ChatStreamEvent{
		Event: llm.ChatStreamDelta{EventType: "complete", StopReason: stopEndOfTurn},
	})

	return s.streamEvents(c, events)
}

func (s *Server) handleTextCompletion(c *fiber.Ctx) error {
	var req llm.CompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Model == "" {
		return badRequest(c, "model is required")
	}
	if !s.serves(req.Model) {
		return modelNotServed(c, req.Model)
	}
	if req.Prompt == "" {
		return badRequest(c, "prompt is required")
	}

	reply := textReply(req.Prompt)

	if !req.Stream {
		return c.JSON(llm.TextCompletionResponse{
			Content:    reply,
			StopReason: stopEndOfTurn,
		})
	}

	toks := tokens(reply)
	events := make([]any, 0, len(toks)+1)
	for _, tok := range toks {
		events = append(events, llm.TextStreamEvent{Delta: tok})
	}
	events = append(events, llm.TextStreamEvent{StopReason: stopEndOfTurn})

	return s.streamEvents(c, events)
}

func (s *Server) handleEmbeddings(c *fiber.Ctx) error {
	var req llm.EmbeddingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Model == "" {
		return badRequest(c, "model is required")
	}
	if !s.serves(req.Model) {
		return modelNotServed(c, req.Model)
	}
	if len(req.Input) == 0 {
		return badRequest(c, "input is required")
	}

	resp := llm.EmbeddingsResponse{Embeddings: make([][]float32, 0, len(req.Input))}
	for _, text := range req.Input {
		resp.Embeddings = append(resp.Embeddings, embed(text, s.config.EmbeddingDimensions))
	}
	return c.JSON(resp)
}

// streamEvents writes events as SSE data frames.
//
// io.Pipe + SetBodyStream makes fasthttp write each frame as its own chunk:
// pw.Write blocks until the chunk has been taken by the connection.
func (s *Server) streamEvents(c *fiber.Ctx, events []any) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()

		for i, ev := range events {
			if i > 0 && s.config.ChunkDelay > 0 {
				time.Sleep(s.config.ChunkDelay)
			}

			b, err := json.Marshal(ev)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := fmt.Fprintf(pw, "data: %s\n\n", b); err != nil {
				s.logger.Debug("client went away mid-stream", "error", err)
				return
			}
		}
	}()

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// serves reports whether model may be used with this server.
func (s *Server) serves(model string) bool {
	return s.config.Models == nil || s.config.Models.Registered(model)
}

func modelNotServed(c *fiber.Ctx, model string) error {
	return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: fmt.Sprintf("model %q is not served", model)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: msg})
}

// chatReply answers the last user message.
func chatReply(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return "You said: " + messages[i].Content
		}
	}
	return "Hello!"
}

func textReply(prompt string) string {
	return prompt + " ... and so on."
}

// tokens splits s into words, keeping each word's trailing space, so that
// joining the tokens yields s again.
func tokens(s string) []string {
	return strings.SplitAfter(s, " ")
}

// embed returns a normalized bag-of-words vector of hashed terms.
func embed(text string, dims int) []float32 {
	v := make([]float32, dims)
	for _, term := range memory.Terms(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(term))
		v[h.Sum32()%uint32(dims)]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

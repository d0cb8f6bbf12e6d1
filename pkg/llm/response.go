package llm

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Response is a fully buffered JSON value returned by a single-shot call.
type Response json.RawMessage

// Decode unmarshals the response into v.
func (r Response) Decode(v any) error {
	return json.Unmarshal(r, v)
}

// Get returns the value at the given gjson path.
func (r Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r, path)
}

// String returns the raw JSON text.
func (r Response) String() string {
	return string(r)
}

// MarshalJSON returns the raw JSON unchanged.
func (r Response) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}

// CompletionResponse is the single-shot result of a chat or text completion.
type CompletionResponse struct {
	CompletionMessage Message `json:"completion_message"`
	StopReason        string  `json:"stop_reason,omitempty"`
}

// TextCompletionResponse is the single-shot result of a text completion.
type TextCompletionResponse struct {
	Content    string `json:"content"`
	StopReason string `json:"stop_reason,omitempty"`
}

// ChatStreamEvent is the payload of one chat completion stream frame.
type ChatStreamEvent struct {
	Event ChatStreamDelta `json:"event"`
}

// ChatStreamDelta carries the incremental text of a chat stream.
// EventType is "start", "progress" or "complete".
type ChatStreamDelta struct {
	EventType  string `json:"event_type"`
	Delta      string `json:"delta"`
	StopReason string `json:"stop_reason,omitempty"`
}

// TextStreamEvent is the payload of one text completion stream frame. The
// last frame carries a StopReason.
type TextStreamEvent struct {
	Delta      string `json:"delta"`
	StopReason string `json:"stop_reason,omitempty"`
}

// EmbeddingsResponse holds one embedding per input string, in input order.
type EmbeddingsResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// MemoryAddResponse lists the ids of the stored documents.
type MemoryAddResponse struct {
	IDs []string `json:"ids"`
}

// MemoryGetResponse holds the documents found for the requested ids.
// Unknown ids are omitted, so a miss is an empty list.
type MemoryGetResponse struct {
	Documents []Document `json:"documents"`
}

// MemoryDeleteResponse lists the ids that were removed.
type MemoryDeleteResponse struct {
	Deleted []string `json:"deleted"`
}

// MemorySearchResponse holds search hits, best first.
type MemorySearchResponse struct {
	Results []ScoredDocument `json:"results"`
}

// ErrorResponse is the JSON body of a service-reported error.
type ErrorResponse struct {
	Error string `json:"error"`
}

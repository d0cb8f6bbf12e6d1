// Package stream turns a streamed HTTP response into a pull-based sequence
// of parsed events.
//
// A Reader owns the response body for its whole lifetime: it validates the
// status, decodes SSE data frames with pkg/sse, parses each frame as JSON,
// and closes the body exactly once on every exit path.
package stream

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Kind classifies an event payload.
type Kind string

const (
	// KindChunk is a partial completion: incremental text or token data.
	KindChunk Kind = "chunk"

	// KindFinal is the final completion result of a stream.
	KindFinal Kind = "final"

	// KindError is an error object reported by the service in-band.
	KindError Kind = "error"
)

// Event is a parsed stream frame. It is handed to the caller and not
// retained by the Reader.
type Event struct {
	Kind Kind

	// Data is the frame's JSON payload, unmodified.
	Data json.RawMessage

	// Offset is the byte offset of the frame's line in the stream.
	Offset int64
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Get returns the value at the given gjson path of the payload.
func (e *Event) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Data, path)
}

// String returns the raw JSON payload.
func (e *Event) String() string {
	return string(e.Data)
}

// textPaths are the payload fields that carry completion text, in lookup
// order.
var textPaths = []string{
	"event.delta",
	"delta",
	"chunk",
	"completion_message.content",
	"content",
}

// Text returns the completion text carried by the event, or "" when it has
// none.
func (e *Event) Text() string {
	if !gjson.ParseBytes(e.Data).IsObject() {
		return ""
	}
	for _, path := range textPaths {
		if r := gjson.GetBytes(e.Data, path); r.Type == gjson.String {
			return r.Str
		}
	}
	return ""
}

// classify derives the Kind of a valid JSON payload without decoding it.
func classify(data []byte) Kind {
	if !gjson.ParseBytes(data).IsObject() {
		return KindChunk
	}

	fields := gjson.GetManyBytes(data,
		"error",
		"event.event_type",
		"done",
		"stop_reason",
		"completion_message",
	)

	if fields[0].Exists() && fields[0].Type != gjson.Null {
		return KindError
	}

	switch {
	case fields[1].String() == "complete",
		fields[2].Bool(),
		fields[3].String() != "",
		fields[4].Exists():
		return KindFinal
	}

	return KindChunk
}

package stream

import (
	"encoding/json"
	"errors"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/sse"
)

// ErrEmptyPayload is the cause of a DecodeError for a "data:" line with no
// payload.
var ErrEmptyPayload = errors.New("empty payload")

// ParseFrame parses the payload of a single frame. A frame that is empty or
// not valid JSON produces a *llm.DecodeError describing that frame only.
func ParseFrame(f *sse.Frame) (*Event, error) {
	if f.Data == "" {
		return nil, &llm.DecodeError{
			RawPayload: f.Data,
			Offset:     f.Offset,
			Cause:      ErrEmptyPayload,
		}
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(f.Data), &raw); err != nil {
		return nil, &llm.DecodeError{
			RawPayload: f.Data,
			Offset:     f.Offset,
			Cause:      err,
		}
	}

	return &Event{
		Kind:   classify(raw),
		Data:   raw,
		Offset: f.Offset,
	}, nil
}

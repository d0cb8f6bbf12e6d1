package llm

import (
	"encoding/json"
	"maps"
)

// Message represents a single message in a chat completion request.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant", "ipython"
	Content string `json:"content"`

	// Extra carries provider specific fields (e.g. "stop_reason" or
	// "tool_calls"). They are merged into the JSON object; role and content
	// always win.
	Extra map[string]any `json:"-"`
}

// NewTextMessage creates a text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: text,
	}
}

func (m Message) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(m.Extra)+2)
	maps.Copy(obj, m.Extra)
	obj["role"] = m.Role
	obj["content"] = m.Content
	return json.Marshal(obj)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*m = Message{}
	for k, v := range obj {
		switch k {
		case "role":
			if err := json.Unmarshal(v, &m.Role); err != nil {
				return err
			}
		case "content":
			if err := json.Unmarshal(v, &m.Content); err != nil {
				return err
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			if m.Extra == nil {
				m.Extra = map[string]any{}
			}
			m.Extra[k] = val
		}
	}
	return nil
}

// Document is a single item in a memory collection.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredDocument is a memory search hit.
type ScoredDocument struct {
	Document Document `json:"document"`

	// Score represents the similarity score (higher = more similar).
	Score float64 `json:"score"`
}

package llm

// ChatRequest is the body of a chat completion call.
type ChatRequest struct {
	// Model identifier (e.g., "Llama3.2-3B")
	Model string `json:"model"`

	// Ordered conversation messages
	Messages []Message `json:"messages"`

	// Whether the service should stream the response as SSE frames.
	// The client sets this from the method that is called.
	Stream bool `json:"stream"`
}

// CompletionRequest is the body of a text completion call.
type CompletionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// EmbeddingsRequest is the body of an embeddings call.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// MemoryAddRequest is the body of a memory add call. Get, delete and search
// take their parameters from the query string instead.
type MemoryAddRequest struct {
	Collection string     `json:"collection"`
	Documents  []Document `json:"documents"`
}

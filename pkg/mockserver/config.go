// Package mockserver provides a local stand-in for the remote inference and
// memory service. It speaks the same wire contract as the real service and
// is used by tests and by "marcus mock".
package mockserver

import (
	"time"

	"github.com/papercomputeco/marcus/pkg/models"
)

// DefaultEmbeddingDimensions is the length of vectors returned by the mock
// embeddings endpoint.
const DefaultEmbeddingDimensions = 16

// Config is the mock server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":7777")
	ListenAddr string

	// ChunkDelay is slept between stream frames so streaming is observable
	// from a terminal. Zero streams as fast as the client reads.
	ChunkDelay time.Duration

	// EmbeddingDimensions defaults to DefaultEmbeddingDimensions.
	EmbeddingDimensions int

	// Models, when set, limits inference to its registered models. Requests
	// for any other model get a 404. Nil serves every model.
	Models *models.Registry
}

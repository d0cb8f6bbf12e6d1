// Package memory provides the document store behind the mock memory
// endpoints.
//
// Documents live in named collections. Drivers are pluggable via
// configuration:
//
//	[mock]
//	store = "local"   # or "sqlite"
package memory

import (
	"context"

	"github.com/papercomputeco/marcus/pkg/llm"
)

// DefaultSearchK is the number of results returned by a search when the
// caller does not ask for a specific count.
const DefaultSearchK = 5

// Driver stores and retrieves documents.
type Driver interface {
	// Add stores docs in collection, replacing documents with the same ID.
	// Documents without an ID are assigned one. The stored IDs are returned
	// in input order.
	Add(ctx context.Context, collection string, docs []llm.Document) ([]string, error)

	// Get returns the documents with the given IDs in request order. Unknown
	// IDs are omitted.
	Get(ctx context.Context, collection string, ids []string) ([]llm.Document, error)

	// Delete removes the documents with the given IDs and returns the IDs
	// that existed.
	Delete(ctx context.Context, collection string, ids []string) ([]string, error)

	// Search returns up to k documents of collection ranked against query,
	// best first. A k of zero or less means DefaultSearchK.
	Search(ctx context.Context, collection, query string, k int) ([]llm.ScoredDocument, error)

	// Close releases driver resources.
	Close() error
}

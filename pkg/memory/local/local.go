// Package local provides an in-memory implementation of the memory.Driver
// interface. Contents are lost when the process exits.
package local

import (
	"context"
	"maps"
	"sync"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

// Driver implements memory.Driver using in-process data structures.
type Driver struct {
	mu sync.RWMutex

	// collections maps collection name -> document id -> document.
	collections map[string]map[string]llm.Document
}

// NewDriver creates a local in-memory memory driver.
func NewDriver() *Driver {
	return &Driver{
		collections: make(map[string]map[string]llm.Document),
	}
}

func (d *Driver) Add(_ context.Context, collection string, docs []llm.Document) ([]string, error) {
	docs = memory.AssignIDs(docs)

	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.collections[collection]
	if !ok {
		c = make(map[string]llm.Document)
		d.collections[collection] = c
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		c[doc.ID] = cloneDocument(doc)
		ids = append(ids, doc.ID)
	}

	return ids, nil
}

func (d *Driver) Get(_ context.Context, collection string, ids []string) ([]llm.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c := d.collections[collection]
	result := make([]llm.Document, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		doc, ok := c[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		// Return a copy to avoid callers mutating internal state.
		result = append(result, cloneDocument(doc))
	}

	return result, nil
}

func (d *Driver) Delete(_ context.Context, collection string, ids []string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.collections[collection]
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := c[id]; !ok {
			continue
		}
		delete(c, id)
		deleted = append(deleted, id)
	}

	if c != nil && len(c) == 0 {
		delete(d.collections, collection)
	}

	return deleted, nil
}

func (d *Driver) Search(_ context.Context, collection, query string, k int) ([]llm.ScoredDocument, error) {
	d.mu.RLock()
	docs := make([]llm.Document, 0, len(d.collections[collection]))
	for _, doc := range d.collections[collection] {
		docs = append(docs, cloneDocument(doc))
	}
	d.mu.RUnlock()

	return memory.Rank(query, docs, k), nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func cloneDocument(doc llm.Document) llm.Document {
	doc.Metadata = maps.Clone(doc.Metadata)
	return doc
}

package testutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

// ErrMockStore is returned by MockMemoryDriver when a failure is requested.
var ErrMockStore = errors.New("mock store failure")

// MockMemoryDriver is a test memory driver that records calls and returns
// configurable results.
type MockMemoryDriver struct {
	// Added accumulates all documents passed to Add.
	Added []llm.Document

	// GetResults is returned by Get for any ids.
	GetResults []llm.Document

	// SearchResults is returned by Search for any query.
	SearchResults []llm.ScoredDocument

	// Fail causes every operation to return ErrMockStore.
	Fail bool
}

// NewMockMemoryDriver creates a new mock memory driver.
func NewMockMemoryDriver() *MockMemoryDriver {
	return &MockMemoryDriver{
		Added:         make([]llm.Document, 0),
		GetResults:    make([]llm.Document, 0),
		SearchResults: make([]llm.ScoredDocument, 0),
	}
}

var _ memory.Driver = (*MockMemoryDriver)(nil)

func (m *MockMemoryDriver) Add(_ context.Context, _ string, docs []llm.Document) ([]string, error) {
	if m.Fail {
		return nil, ErrMockStore
	}
	docs = memory.AssignIDs(docs)
	m.Added = append(m.Added, docs...)

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}

func (m *MockMemoryDriver) Get(_ context.Context, _ string, _ []string) ([]llm.Document, error) {
	if m.Fail {
		return nil, ErrMockStore
	}
	return m.GetResults, nil
}

func (m *MockMemoryDriver) Delete(_ context.Context, _ string, ids []string) ([]string, error) {
	if m.Fail {
		return nil, ErrMockStore
	}
	return ids, nil
}

func (m *MockMemoryDriver) Search(_ context.Context, _, _ string, _ int) ([]llm.ScoredDocument, error) {
	if m.Fail {
		return nil, ErrMockStore
	}
	return m.SearchResults, nil
}

func (m *MockMemoryDriver) Close() error {
	return nil
}

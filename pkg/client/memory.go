package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

const (
	pathMemoryAdd    = "/memory/add"
	pathMemoryGet    = "/memory/get"
	pathMemoryDelete = "/memory/delete"
	pathMemorySearch = "/memory/search"
)

// MemoryAdd stores docs in collection (see llm.MemoryAddResponse). It is not
// idempotent.
func (c *Client) MemoryAdd(ctx context.Context, collection string, docs []llm.Document) (llm.Response, error) {
	if collection == "" {
		return nil, llm.NewValidationError("collection", "is required")
	}
	if len(docs) == 0 {
		return nil, llm.NewValidationError("documents", "must not be empty")
	}

	body := llm.MemoryAddRequest{Collection: collection, Documents: docs}
	return c.call(ctx, "memory_add", http.MethodPost, pathMemoryAdd, nil, body)
}

// MemoryGet fetches documents by id (see llm.MemoryGetResponse).
func (c *Client) MemoryGet(ctx context.Context, collection string, ids []string) (llm.Response, error) {
	query, err := idsQuery(collection, ids)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "memory_get", http.MethodGet, pathMemoryGet, query, nil)
}

// MemoryDelete removes documents by id (see llm.MemoryDeleteResponse).
func (c *Client) MemoryDelete(ctx context.Context, collection string, ids []string) (llm.Response, error) {
	query, err := idsQuery(collection, ids)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "memory_delete", http.MethodDelete, pathMemoryDelete, query, nil)
}

// MemorySearch returns up to k documents matching query (see
// llm.MemorySearchResponse). A k of zero or less asks for
// memory.DefaultSearchK results.
func (c *Client) MemorySearch(ctx context.Context, collection, query string, k int) (llm.Response, error) {
	if collection == "" {
		return nil, llm.NewValidationError("collection", "is required")
	}
	if query == "" {
		return nil, llm.NewValidationError("query", "is required")
	}
	if k <= 0 {
		k = memory.DefaultSearchK
	}

	params := url.Values{
		"collection": {collection},
		"query":      {query},
		"k":          {strconv.Itoa(k)},
	}
	return c.call(ctx, "memory_search", http.MethodGet, pathMemorySearch, params, nil)
}

func idsQuery(collection string, ids []string) (url.Values, error) {
	if collection == "" {
		return nil, llm.NewValidationError("collection", "is required")
	}
	if len(ids) == 0 {
		return nil, llm.NewValidationError("ids", "must not be empty")
	}
	return url.Values{
		"collection": {collection},
		"ids":        ids,
	}, nil
}

package mockserver

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

func (s *Server) handleMemoryAdd(c *fiber.Ctx) error {
	var req llm.MemoryAddRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Collection == "" {
		return badRequest(c, "collection is required")
	}
	if len(req.Documents) == 0 {
		return badRequest(c, "documents are required")
	}

	ids, err := s.store.Add(c.Context(), req.Collection, req.Documents)
	if err != nil {
		s.logger.Error("failed to add documents", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to add documents"})
	}

	return c.JSON(llm.MemoryAddResponse{IDs: ids})
}

func (s *Server) handleMemoryGet(c *fiber.Ctx) error {
	collection, ids, ok := collectionAndIDs(c)
	if !ok {
		return nil
	}

	docs, err := s.store.Get(c.Context(), collection, ids)
	if err != nil {
		s.logger.Error("failed to get documents", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get documents"})
	}
	if docs == nil {
		docs = []llm.Document{}
	}

	return c.JSON(llm.MemoryGetResponse{Documents: docs})
}

func (s *Server) handleMemoryDelete(c *fiber.Ctx) error {
	collection, ids, ok := collectionAndIDs(c)
	if !ok {
		return nil
	}

	deleted, err := s.store.Delete(c.Context(), collection, ids)
	if err != nil {
		s.logger.Error("failed to delete documents", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to delete documents"})
	}

	return c.JSON(llm.MemoryDeleteResponse{Deleted: deleted})
}

func (s *Server) handleMemorySearch(c *fiber.Ctx) error {
	collection := c.Query("collection")
	if collection == "" {
		return badRequest(c, "collection is required")
	}
	query := c.Query("query")
	if query == "" {
		return badRequest(c, "query is required")
	}
	k := c.QueryInt("k", memory.DefaultSearchK)

	results, err := s.store.Search(c.Context(), collection, query, k)
	if err != nil {
		s.logger.Error("failed to search documents", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to search documents"})
	}
	if results == nil {
		results = []llm.ScoredDocument{}
	}

	return c.JSON(llm.MemorySearchResponse{Results: results})
}

// collectionAndIDs reads the collection and repeated ids query parameters.
// When either is missing it writes a 400 response and reports false.
func collectionAndIDs(c *fiber.Ctx) (string, []string, bool) {
	collection := c.Query("collection")
	if collection == "" {
		_ = badRequest(c, "collection is required")
		return "", nil, false
	}

	var ids []string
	for _, id := range c.Context().QueryArgs().PeekMulti("ids") {
		if len(id) > 0 {
			ids = append(ids, string(id))
		}
	}
	if len(ids) == 0 {
		_ = badRequest(c, "ids are required")
		return "", nil, false
	}

	return collection, ids, true
}

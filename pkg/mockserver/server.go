package mockserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/marcus/pkg/memory"
)

// HeaderRequestID carries the per-request id. It is generated when the
// client does not send one and always echoed back.
const HeaderRequestID = "X-Request-ID"

// Server is the mock inference and memory service.
type Server struct {
	config Config
	store  memory.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new mock server backed by store.
func NewServer(config Config, store memory.Driver, logger *slog.Logger) (*Server, error) {
	if store == nil {
		return nil, memory.ErrNotConfigured
	}
	if config.EmbeddingDimensions <= 0 {
		config.EmbeddingDimensions = DefaultEmbeddingDimensions
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  store,
		logger: logger,
		app:    app,
	}

	app.Use(s.requestLogger)

	app.Get("/ping", s.handlePing)

	app.Post("/inference/chat_completion", s.handleChatCompletion)
	app.Post("/inference/text_completion", s.handleTextCompletion)
	app.Post("/inference/embeddings", s.handleEmbeddings)

	app.Post("/memory/add", s.handleMemoryAdd)
	app.Get("/memory/get", s.handleMemoryGet)
	app.Delete("/memory/delete", s.handleMemoryDelete)
	app.Get("/memory/search", s.handleMemorySearch)

	return s, nil
}

// Handler exposes the server as a net/http handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// Run starts the mock server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the mock server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(HeaderRequestID, id)

	err := c.Next()

	s.logger.Debug("handled request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"request_id", id,
		"duration", time.Since(start),
	)
	return err
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

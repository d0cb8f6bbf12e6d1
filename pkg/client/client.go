// Package client is the typed facade over the inference and memory service:
// one method per endpoint, returning either a buffered JSON response or a
// stream.Reader.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/logger"
	"github.com/papercomputeco/marcus/pkg/metrics"
	"github.com/papercomputeco/marcus/pkg/models"
	"github.com/papercomputeco/marcus/pkg/stream"
	"github.com/papercomputeco/marcus/pkg/utils"
)

// HeaderRequestID is sent with every request.
const HeaderRequestID = "X-Request-ID"

const (
	acceptJSON = "application/json"
	acceptSSE  = "text/event-stream"
)

// Client talks to one service. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	idleTimeout  time.Duration
	models       *models.Registry
	mapModels    bool
	doneSentinel string
	userAgent    string
	logger       *slog.Logger
	metrics      *metrics.Collectors
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, llm.NewValidationError("base_url", "is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, llm.NewValidationError("base_url", fmt.Sprintf("%q is not an absolute URL", cfg.BaseURL))
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   cfg.HTTPClient,
		timeout:      cfg.Timeout,
		idleTimeout:  cfg.IdleTimeout,
		models:       cfg.Models,
		mapModels:    cfg.MapModels,
		doneSentinel: cfg.DoneSentinel,
		userAgent:    cfg.UserAgent,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	switch {
	case c.idleTimeout == 0:
		c.idleTimeout = c.timeout
	case c.idleTimeout < 0:
		c.idleTimeout = 0
	}
	if c.userAgent == "" {
		c.userAgent = "marcus/" + utils.Version
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	return c, nil
}

// BaseURL returns the service URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// model validates id against the registry and returns the identifier to
// send.
func (c *Client) model(id string) (string, error) {
	if id == "" {
		return "", llm.NewValidationError("model", "is required")
	}
	if c.models == nil {
		return id, nil
	}

	providerID, err := c.models.MapToProvider(id)
	if err != nil {
		return "", llm.NewValidationError("model", err.Error())
	}
	if c.mapModels {
		return providerID, nil
	}
	return id, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any, accept string) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, uuid.NewString())

	return req, nil
}

// call performs a single-shot request and returns the buffered body as one
// JSON value.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body any) (resp llm.Response, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(op, err, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, query, body, acceptJSON)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("sending request",
		"method", method,
		"path", path,
		"request_id", req.Header.Get(HeaderRequestID),
	)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, llm.NewTransportError("sending request", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llm.NewTransportError("reading response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Debug("service returned error",
			"path", path,
			"status", httpResp.StatusCode,
		)
		return nil, &llm.HTTPStatusError{Code: httpResp.StatusCode, Body: string(data)}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &llm.DecodeError{RawPayload: string(data), Offset: -1, Cause: err}
	}

	return llm.Response(raw), nil
}

// openStream sends a streaming request. The timeout covers connecting and
// receiving the response headers; after that only the idle timeout applies.
func (c *Client) openStream(ctx context.Context, op, path string, body any, opts []stream.Option) (r *stream.Reader, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(op, err, time.Since(start))
	}()

	ctx, cancel := context.WithCancel(ctx)

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body, acceptSSE)
	if err != nil {
		cancel()
		return nil, err
	}

	c.logger.Debug("opening stream",
		"path", path,
		"request_id", req.Header.Get(HeaderRequestID),
	)

	var timedOut atomic.Bool
	timer := time.AfterFunc(c.timeout, func() {
		timedOut.Store(true)
		cancel()
	})

	httpResp, err := c.httpClient.Do(req)
	stopped := timer.Stop()
	if err != nil {
		cancel()
		if timedOut.Load() {
			return nil, llm.NewTimeoutError("sending request", err)
		}
		return nil, llm.NewTransportError("sending request", err)
	}
	if !stopped {
		// The headers arrived just as the timer fired; the context is
		// already cancelled.
		_ = httpResp.Body.Close()
		cancel()
		return nil, llm.NewTimeoutError("sending request", context.DeadlineExceeded)
	}

	readerOpts := []stream.Option{
		stream.WithCancel(cancel),
		stream.WithIdleTimeout(c.idleTimeout),
		stream.WithLogger(c.logger),
		stream.WithMetrics(c.metrics),
	}
	if c.doneSentinel != "" {
		readerOpts = append(readerOpts, stream.WithDoneSentinel(c.doneSentinel))
	}
	readerOpts = append(readerOpts, opts...)

	return stream.NewReader(httpResp, readerOpts...)
}

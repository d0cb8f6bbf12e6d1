// Package testutils holds fakes shared by test suites.
package testutils

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// MockTransport is an http.RoundTripper that records requests and answers
// them with Respond.
type MockTransport struct {
	// Respond builds the response for a request. When nil, every request
	// gets an empty 200.
	Respond func(req *http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

// NewMockTransport creates a transport answering with respond.
func NewMockTransport(respond func(req *http.Request) (*http.Response, error)) *MockTransport {
	return &MockTransport{Respond: respond}
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	if m.Respond == nil {
		return Response(http.StatusOK, NewTrackingBody(strings.NewReader(""))), nil
	}
	return m.Respond(req)
}

// Client returns an *http.Client using the transport.
func (m *MockTransport) Client() *http.Client {
	return &http.Client{Transport: m}
}

// Calls returns the number of requests seen.
func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Request returns the i-th recorded request and its body.
func (m *MockTransport) Request(i int) (*http.Request, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i], m.bodies[i]
}

// TrackingBody is a response body that counts Close calls. Closing it
// unblocks a pending Read when the source is an *io.PipeReader.
type TrackingBody struct {
	src    io.Reader
	closes atomic.Int32
}

// NewTrackingBody wraps src.
func NewTrackingBody(src io.Reader) *TrackingBody {
	return &TrackingBody{src: src}
}

// NewTrackingBodyString wraps s.
func NewTrackingBodyString(s string) *TrackingBody {
	return NewTrackingBody(bytes.NewReader([]byte(s)))
}

func (b *TrackingBody) Read(p []byte) (int, error) {
	return b.src.Read(p)
}

func (b *TrackingBody) Close() error {
	b.closes.Add(1)
	if pr, ok := b.src.(*io.PipeReader); ok {
		return pr.Close()
	}
	return nil
}

// Closes returns how many times Close was called.
func (b *TrackingBody) Closes() int {
	return int(b.closes.Load())
}

// Response builds a response with body. Status 200 responses are labelled as
// an event stream.
func Response(status int, body io.ReadCloser) *http.Response {
	h := http.Header{}
	if status == http.StatusOK {
		h.Set("Content-Type", "text/event-stream")
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       body,
	}
}

// SSE renders payloads as "data:" frames separated by blank lines.
func SSE(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		b.WriteString("data: " + p + "\n\n")
	}
	return b.String()
}

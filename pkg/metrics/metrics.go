// Package metrics provides Prometheus collectors for the marcus client:
// request outcomes and latency, open streaming connections, and per-frame
// stream results.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/papercomputeco/marcus/pkg/llm"
)

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeHTTPStatus = "http_status"
	OutcomeTransport  = "transport"
	OutcomeDecode     = "decode"
	OutcomeValidation = "validation"
	OutcomeOther      = "other"
)

// Collectors groups the client metrics. A nil *Collectors is valid and
// records nothing, so callers never need to nil-check.
type Collectors struct {
	// RequestsTotal counts calls by operation and outcome.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration records time to response headers (streaming) or to the
	// fully decoded body (single-shot), by operation.
	RequestDuration *prometheus.HistogramVec

	// StreamsActive tracks open streaming connections.
	StreamsActive prometheus.Gauge

	// StreamEventsTotal counts parsed stream events by kind.
	StreamEventsTotal *prometheus.CounterVec

	// DecodeErrorsTotal counts stream frames that failed to parse.
	DecodeErrorsTotal prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcus_client_requests_total",
				Help: "Client requests",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marcus_client_request_duration_seconds",
				Help:    "Client request duration",
				Buckets: LLMBuckets,
			},
			[]string{"operation"},
		),
		StreamsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "marcus_client_streams_active",
				Help: "Open streaming connections",
			},
		),
		StreamEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marcus_client_stream_events_total",
				Help: "Stream events received",
			},
			[]string{"kind"},
		),
		DecodeErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marcus_client_stream_decode_errors_total",
				Help: "Stream frames that failed to decode",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			c.RequestsTotal,
			c.RequestDuration,
			c.StreamsActive,
			c.StreamEventsTotal,
			c.DecodeErrorsTotal,
		)
	}

	return c
}

// ObserveRequest records the outcome and duration of one call.
func (c *Collectors) ObserveRequest(operation string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	c.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// StreamOpened increments the open stream gauge.
func (c *Collectors) StreamOpened() {
	if c == nil {
		return
	}
	c.StreamsActive.Inc()
}

// StreamClosed decrements the open stream gauge.
func (c *Collectors) StreamClosed() {
	if c == nil {
		return
	}
	c.StreamsActive.Dec()
}

// EventReceived counts a parsed stream event of the given kind.
func (c *Collectors) EventReceived(kind string) {
	if c == nil {
		return
	}
	c.StreamEventsTotal.WithLabelValues(kind).Inc()
}

// DecodeFailed counts a stream frame that failed to parse.
func (c *Collectors) DecodeFailed() {
	if c == nil {
		return
	}
	c.DecodeErrorsTotal.Inc()
}

// Outcome maps an error from the client to an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, llm.ErrHTTPStatus):
		return OutcomeHTTPStatus
	case errors.Is(err, llm.ErrTransport):
		return OutcomeTransport
	case errors.Is(err, llm.ErrDecode):
		return OutcomeDecode
	case errors.Is(err, llm.ErrValidation):
		return OutcomeValidation
	default:
		return OutcomeOther
	}
}

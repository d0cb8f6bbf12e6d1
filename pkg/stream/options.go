package stream

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/papercomputeco/marcus/pkg/metrics"
)

// Option configures a Reader.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	metrics     *metrics.Collectors
	idleTimeout time.Duration
	cancel      context.CancelFunc
	tee         io.Writer
	done        string
}

// WithLogger sets the logger. Decode failures are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records stream activity in c.
func WithMetrics(c *metrics.Collectors) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// WithIdleTimeout ends the stream with a timeout TransportError when a
// single read of the body blocks for longer than d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}

// WithCancel hands the Reader the cancel function of the request context.
// It is called once when the Reader closes.
func WithCancel(cancel context.CancelFunc) Option {
	return func(o *options) {
		o.cancel = cancel
	}
}

// WithTee copies every raw line read from the body to w.
func WithTee(w io.Writer) Option {
	return func(o *options) {
		o.tee = w
	}
}

// WithDoneSentinel ends the stream normally when a frame payload equals s,
// e.g. "[DONE]". Disabled by default.
func WithDoneSentinel(s string) Option {
	return func(o *options) {
		o.done = s
	}
}

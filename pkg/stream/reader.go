package stream

import (
	"errors"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/logger"
	"github.com/papercomputeco/marcus/pkg/metrics"
	"github.com/papercomputeco/marcus/pkg/sse"
)

// opReading names the step reported in stream TransportErrors.
const opReading = "reading stream"

// Reader is a pull-based iterator over the events of a streamed response.
//
// Next must be called from a single goroutine. Close may be called from any
// goroutine, at any time, any number of times; the body is closed once.
type Reader struct {
	body    io.ReadCloser
	dec     *sse.Decoder
	idle    *idleReader
	opts    options
	logger  *slog.Logger
	metrics *metrics.Collectors

	finished  bool
	abandoned atomic.Bool

	closeOnce sync.Once
	closeErr  error
}

// NewReader takes ownership of resp.Body. A status other than 200 is
// reported as *llm.HTTPStatusError carrying the full body text; the body is
// closed and no Reader is returned.
func NewReader(resp *http.Response, opts ...Option) (*Reader, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if o.cancel != nil {
			o.cancel()
		}
		if err != nil {
			o.logger.Debug("reading error body", "status", resp.StatusCode, "error", err)
		}
		return nil, &llm.HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}

	r := &Reader{
		body:    resp.Body,
		opts:    o,
		logger:  o.logger,
		metrics: o.metrics,
	}

	var src io.Reader = resp.Body
	if o.idleTimeout > 0 {
		r.idle = newIdleReader(resp.Body, o.idleTimeout, func() {
			r.logger.Debug("stream idle timeout", "timeout", o.idleTimeout)
			_ = r.release()
		})
		src = r.idle
	}
	r.dec = sse.NewTeeDecoder(src, o.tee)

	r.metrics.StreamOpened()
	r.logger.Debug("stream opened")

	return r, nil
}

// Next returns the next event of the stream.
//
//   - (*Event, nil): an event.
//   - (nil, *llm.DecodeError): one frame could not be parsed; the stream
//     continues and Next may be called again.
//   - (nil, *llm.TransportError): the connection failed or went idle. The
//     stream is closed.
//   - (nil, nil): the stream ended or was closed.
//
// After a terminal result every call returns (nil, nil).
func (r *Reader) Next() (*Event, error) {
	if r.finished {
		return nil, nil
	}
	if r.abandoned.Load() {
		r.finished = true
		return nil, nil
	}
	if r.idle != nil && r.idle.expired.Load() {
		r.finished = true
		return nil, llm.NewTimeoutError(opReading, errIdle)
	}

	frame, err := r.dec.Next()
	if err != nil {
		return nil, r.fail(err)
	}
	// Close may have run while the read was in flight.
	if r.abandoned.Load() {
		r.finished = true
		return nil, nil
	}
	if frame == nil {
		r.finish()
		return nil, nil
	}
	if r.opts.done != "" && frame.Data == r.opts.done {
		r.finish()
		return nil, nil
	}

	ev, err := ParseFrame(frame)
	if err != nil {
		r.metrics.DecodeFailed()
		r.logger.Debug("skipping undecodable frame",
			"offset", frame.Offset,
			"line", frame.Line,
			"error", err,
		)
		return nil, err
	}

	if r.abandoned.Load() {
		r.finished = true
		return nil, nil
	}

	r.metrics.EventReceived(string(ev.Kind))
	return ev, nil
}

// All returns the remaining events as a range-over-func sequence. Decode
// errors are yielded and iteration continues; a transport error is yielded
// last. Leaving the loop early closes the stream before the range statement
// returns.
func (r *Reader) All() iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		defer r.Close()

		for {
			ev, err := r.Next()
			if ev == nil && err == nil {
				return
			}
			if !yield(ev, err) {
				return
			}
			if err != nil && !errors.Is(err, llm.ErrDecode) {
				return
			}
		}
	}
}

// Close abandons the stream: the body is closed and the request context
// cancelled, interrupting a read in progress. Later calls to Next return
// (nil, nil). Close is idempotent.
func (r *Reader) Close() error {
	r.abandoned.Store(true)
	return r.release()
}

var errIdle = errors.New("idle timeout")

// fail converts a read error into the terminal result of Next.
func (r *Reader) fail(err error) error {
	expired := r.idle != nil && r.idle.expired.Load()
	abandoned := r.abandoned.Load()
	r.finish()

	switch {
	case expired:
		return llm.NewTimeoutError(opReading, errIdle)
	case abandoned:
		return nil
	default:
		r.logger.Debug("stream failed", "error", err)
		return llm.NewTransportError(opReading, err)
	}
}

func (r *Reader) finish() {
	r.finished = true
	_ = r.release()
}

// release closes the body exactly once.
func (r *Reader) release() error {
	r.closeOnce.Do(func() {
		if r.idle != nil {
			r.idle.stop()
		}
		r.closeErr = r.body.Close()
		if r.opts.cancel != nil {
			r.opts.cancel()
		}
		r.metrics.StreamClosed()
		r.logger.Debug("stream closed")
	})
	return r.closeErr
}

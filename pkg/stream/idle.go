package stream

import (
	"io"
	"sync/atomic"
	"time"
)

// idleReader arms a timer for the duration of every Read on the wrapped
// reader. When a read blocks past the timeout, onExpire runs; it is expected
// to close the underlying body so the pending Read returns.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleReader(r io.Reader, timeout time.Duration, onExpire func()) *idleReader {
	ir := &idleReader{r: r, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.expired.Store(true)
		onExpire()
	})
	ir.timer.Stop()
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	ir.timer.Reset(ir.timeout)
	n, err := ir.r.Read(p)
	ir.timer.Stop()
	return n, err
}

func (ir *idleReader) stop() {
	ir.timer.Stop()
}

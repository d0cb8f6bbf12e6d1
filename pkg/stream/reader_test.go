package stream_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing/iotest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/metrics"
	"github.com/papercomputeco/marcus/pkg/stream"
)

var _ = Describe("Reader", func() {
	Describe("NewReader", func() {
		It("rejects a non-200 status with the body text", func() {
			body := newTrackingBody(strings.NewReader("overloaded"))

			r, err := stream.NewReader(response(http.StatusServiceUnavailable, body))
			Expect(r).To(BeNil())

			var statusErr *llm.HTTPStatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Code).To(Equal(503))
			Expect(statusErr.Body).To(Equal("overloaded"))
			Expect(body.Closes()).To(Equal(1))
		})

		It("cancels the request context on a non-200 status", func() {
			ctx, cancel := context.WithCancel(context.Background())
			body := newTrackingBody(strings.NewReader(""))

			_, err := stream.NewReader(response(http.StatusInternalServerError, body), stream.WithCancel(cancel))
			Expect(errors.Is(err, llm.ErrHTTPStatus)).To(BeTrue())
			Expect(ctx.Err()).To(MatchError(context.Canceled))
		})
	})

	Describe("Next", func() {
		It("yields the two-chunk chat stream in order and then ends", func() {
			body := newTrackingBody(strings.NewReader(sseBody(`{"chunk":"Hi"}`, `{"chunk":" there"}`)))
			r, err := stream.NewReader(response(http.StatusOK, body))
			Expect(err).NotTo(HaveOccurred())

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Get("chunk").String()).To(Equal("Hi"))

			ev, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Get("chunk").String()).To(Equal(" there"))

			ev, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
			Expect(body.Closes()).To(Equal(1))

			ev, err = r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())
		})

		It("continues past frames that fail to decode", func() {
			input := "data: {\"a\":1}\n\ndata: not-json\n\ndata: {\"a\":2}\n\ndata:\n\ndata: {\"a\":3}\n\n"
			r, err := stream.NewReader(response(http.StatusOK, newTrackingBody(strings.NewReader(input))))
			Expect(err).NotTo(HaveOccurred())

			var values []int64
			var decodeErrs int
			for {
				ev, err := r.Next()
				if err != nil {
					Expect(errors.Is(err, llm.ErrDecode)).To(BeTrue())
					decodeErrs++
					continue
				}
				if ev == nil {
					break
				}
				values = append(values, ev.Get("a").Int())
			}

			Expect(values).To(Equal([]int64{1, 2, 3}))
			Expect(decodeErrs).To(Equal(2))
		})

		It("reports the byte offset of an undecodable frame", func() {
			input := "data: {}\n\ndata: oops\n\n"
			r, err := stream.NewReader(response(http.StatusOK, newTrackingBody(strings.NewReader(input))))
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			var decErr *llm.DecodeError
			Expect(errors.As(err, &decErr)).To(BeTrue())
			Expect(decErr.Offset).To(Equal(int64(strings.Index(input, "data: oops"))))
			Expect(decErr.RawPayload).To(Equal("oops"))
		})

		It("ends with a transport error when the connection drops mid-stream", func() {
			src := io.MultiReader(
				strings.NewReader(sseBody(`{"chunk":"Hi"}`)),
				iotest.ErrReader(io.ErrUnexpectedEOF),
			)
			body := newTrackingBody(src)
			r, err := stream.NewReader(response(http.StatusOK, body))
			Expect(err).NotTo(HaveOccurred())

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Get("chunk").String()).To(Equal("Hi"))

			ev, err = r.Next()
			Expect(ev).To(BeNil())
			Expect(errors.Is(err, llm.ErrTransport)).To(BeTrue())
			Expect(errors.Is(err, io.ErrUnexpectedEOF)).To(BeTrue())
			Expect(body.Closes()).To(Equal(1))

			ev, err = r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())
		})

		It("ends at the done sentinel when configured", func() {
			input := sseBody(`{"chunk":"a"}`, "[DONE]", `{"chunk":"b"}`)
			body := newTrackingBody(strings.NewReader(input))
			r, err := stream.NewReader(response(http.StatusOK, body), stream.WithDoneSentinel("[DONE]"))
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			Expect(err).NotTo(HaveOccurred())

			ev, err := r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Closes()).To(Equal(1))
		})

		It("copies the raw stream to the tee writer", func() {
			input := ": ping\n\n" + sseBody(`{"chunk":"a"}`, `{"chunk":"b"}`)
			var raw bytes.Buffer
			r, err := stream.NewReader(response(http.StatusOK, newTrackingBody(strings.NewReader(input))), stream.WithTee(&raw))
			Expect(err).NotTo(HaveOccurred())

			for _, err := range r.All() {
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(raw.String()).To(Equal(input))
		})
	})

	Describe("idle timeout", func() {
		It("ends a stalled stream with a timeout transport error", func() {
			pr, pw := io.Pipe()
			body := newTrackingBody(pr)
			go func() {
				defer GinkgoRecover()
				_, err := io.WriteString(pw, sseBody(`{"chunk":"Hi"}`))
				Expect(err).NotTo(HaveOccurred())
				// Nothing else is written; the reader must give up on its own.
			}()

			r, err := stream.NewReader(response(http.StatusOK, body), stream.WithIdleTimeout(50*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).NotTo(BeNil())

			start := time.Now()
			ev, err = r.Next()
			Expect(ev).To(BeNil())
			Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))

			var transportErr *llm.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Timeout()).To(BeTrue())
			Expect(body.Closes()).To(Equal(1))
		})

		It("does not fire while reads keep arriving", func() {
			pr, pw := io.Pipe()
			go func() {
				defer GinkgoRecover()
				for range 5 {
					time.Sleep(10 * time.Millisecond)
					_, err := io.WriteString(pw, sseBody(`{"chunk":"x"}`))
					Expect(err).NotTo(HaveOccurred())
				}
				Expect(pw.Close()).To(Succeed())
			}()

			r, err := stream.NewReader(response(http.StatusOK, newTrackingBody(pr)), stream.WithIdleTimeout(time.Second))
			Expect(err).NotTo(HaveOccurred())

			count := 0
			for ev, err := range r.All() {
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Kind).To(Equal(stream.KindChunk))
				count++
			}
			Expect(count).To(Equal(5))
		})
	})

	Describe("abandonment", func() {
		It("closes the connection once when the loop breaks early", func() {
			input := sseBody(`{"i":0}`, `{"i":1}`, `{"i":2}`, `{"i":3}`, `{"i":4}`)
			body := newTrackingBody(strings.NewReader(input))
			r, err := stream.NewReader(response(http.StatusOK, body))
			Expect(err).NotTo(HaveOccurred())

			seen := 0
			for _, err := range r.All() {
				Expect(err).NotTo(HaveOccurred())
				seen++
				if seen == 2 {
					break
				}
			}

			Expect(seen).To(Equal(2))
			Expect(body.Closes()).To(Equal(1))

			ev, err := r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())

			Expect(r.Close()).To(Succeed())
			Expect(body.Closes()).To(Equal(1))
		})

		It("delivers no events after Close even when data is buffered", func() {
			body := newTrackingBody(strings.NewReader(sseBody(`{"i":0}`, `{"i":1}`, `{"i":2}`)))
			r, err := stream.NewReader(response(http.StatusOK, body))
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			Expect(err).NotTo(HaveOccurred())

			Expect(r.Close()).To(Succeed())
			Expect(r.Close()).To(Succeed())

			ev, err := r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Closes()).To(Equal(1))
		})

		It("drops a frame whose read was in flight when Close ran", func() {
			var r *stream.Reader
			src := &beforeFirstRead{
				src:  strings.NewReader(sseBody(`{"i":0}`, `{"i":1}`)),
				hook: func() { Expect(r.Close()).To(Succeed()) },
			}
			body := newTrackingBody(src)

			var err error
			r, err = stream.NewReader(response(http.StatusOK, body))
			Expect(err).NotTo(HaveOccurred())

			ev, err := r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())
			Expect(body.Closes()).To(Equal(1))

			ev, err = r.Next()
			Expect(ev).To(BeNil())
			Expect(err).NotTo(HaveOccurred())
		})

		It("interrupts a blocked read when closed from another goroutine", func() {
			pr, _ := io.Pipe()
			body := newTrackingBody(pr)
			ctx, cancel := context.WithCancel(context.Background())
			r, err := stream.NewReader(response(http.StatusOK, body), stream.WithCancel(cancel))
			Expect(err).NotTo(HaveOccurred())

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				ev, err := r.Next()
				Expect(ev).To(BeNil())
				Expect(err).NotTo(HaveOccurred())
			}()

			time.Sleep(20 * time.Millisecond)
			Expect(r.Close()).To(Succeed())
			Eventually(done).Should(BeClosed())
			Expect(ctx.Err()).To(MatchError(context.Canceled))
			Expect(body.Closes()).To(Equal(1))
		})
	})

	Describe("metrics", func() {
		It("returns the open stream gauge to zero and counts events", func() {
			m := metrics.New(nil)
			input := sseBody(`{"chunk":"a"}`, "bad", `{"done":true}`)
			r, err := stream.NewReader(response(http.StatusOK, newTrackingBody(strings.NewReader(input))), stream.WithMetrics(m))
			Expect(err).NotTo(HaveOccurred())
			Expect(testutil.ToFloat64(m.StreamsActive)).To(Equal(1.0))

			for range r.All() {
			}

			Expect(testutil.ToFloat64(m.StreamsActive)).To(BeZero())
			Expect(testutil.ToFloat64(m.StreamEventsTotal.WithLabelValues("chunk"))).To(Equal(1.0))
			Expect(testutil.ToFloat64(m.StreamEventsTotal.WithLabelValues("final"))).To(Equal(1.0))
			Expect(testutil.ToFloat64(m.DecodeErrorsTotal)).To(Equal(1.0))
		})
	})
})

// beforeFirstRead runs hook once, just before the first Read of src returns
// data.
type beforeFirstRead struct {
	src  io.Reader
	hook func()
	once sync.Once
}

func (b *beforeFirstRead) Read(p []byte) (int, error) {
	b.once.Do(b.hook)
	return b.src.Read(p)
}

package client_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/marcus/pkg/client"
	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/logger"
	"github.com/papercomputeco/marcus/pkg/memory/local"
	"github.com/papercomputeco/marcus/pkg/metrics"
	"github.com/papercomputeco/marcus/pkg/mockserver"
	"github.com/papercomputeco/marcus/pkg/models"
)

// workerKey tags a request context with the goroutine that issued it.
type workerKey struct{}

// countedBody forwards to the real body and counts Close calls.
type countedBody struct {
	io.ReadCloser
	closes atomic.Int32
}

func (b *countedBody) Close() error {
	b.closes.Add(1)
	return b.ReadCloser.Close()
}

// bodyLedger is a RoundTripper that files every response body under the
// worker found in the request context.
type bodyLedger struct {
	base http.RoundTripper

	mu     sync.Mutex
	bodies map[int][]*countedBody
}

func (l *bodyLedger) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := l.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body := &countedBody{ReadCloser: resp.Body}
	resp.Body = body

	worker, _ := req.Context().Value(workerKey{}).(int)
	l.mu.Lock()
	l.bodies[worker] = append(l.bodies[worker], body)
	l.mu.Unlock()

	return resp, nil
}

func (l *bodyLedger) closes(worker int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]int, 0, len(l.bodies[worker]))
	for _, b := range l.bodies[worker] {
		out = append(out, int(b.closes.Load()))
	}
	return out
}

var _ = Describe("Client shared between goroutines", func() {
	const workers = 8

	var (
		c      *client.Client
		m      *metrics.Collectors
		ledger *bodyLedger
	)

	BeforeEach(func() {
		s, err := mockserver.NewServer(mockserver.Config{}, local.NewDriver(), logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		ts := httptest.NewServer(s.Handler())
		DeferCleanup(ts.Close)

		ledger = &bodyLedger{base: http.DefaultTransport, bodies: map[int][]*countedBody{}}
		m = metrics.New(prometheus.NewRegistry())
		c, err = client.New(client.Config{
			BaseURL:    ts.URL,
			HTTPClient: &http.Client{Transport: ledger},
			Models:     models.Default(),
			Metrics:    m,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps streams and single-shot calls of each goroutine apart", func() {
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				ctx := context.WithValue(context.Background(), workerKey{}, i)
				collection := fmt.Sprintf("worker-%d", i)
				word := fmt.Sprintf("token%d", i)

				r, err := c.ChatCompletionStream(ctx, llm.ChatRequest{
					Model:    models.DefaultModel,
					Messages: userMessages("hello " + word),
				})
				Expect(err).NotTo(HaveOccurred())

				var text strings.Builder
				for ev, err := range r.All() {
					Expect(err).NotTo(HaveOccurred())
					text.WriteString(ev.Text())
				}
				Expect(text.String()).To(Equal("You said: hello " + word))

				_, err = c.MemoryAdd(ctx, collection, []llm.Document{
					{ID: word, Text: "note about " + word},
				})
				Expect(err).NotTo(HaveOccurred())

				resp, err := c.MemoryGet(ctx, collection, []string{word})
				Expect(err).NotTo(HaveOccurred())
				var got llm.MemoryGetResponse
				Expect(resp.Decode(&got)).To(Succeed())
				Expect(got.Documents).To(HaveLen(1))
				Expect(got.Documents[0].ID).To(Equal(word))

				resp, err = c.MemorySearch(ctx, collection, word, 0)
				Expect(err).NotTo(HaveOccurred())
				var found llm.MemorySearchResponse
				Expect(resp.Decode(&found)).To(Succeed())
				Expect(found.Results).To(HaveLen(1))
				Expect(found.Results[0].Document.ID).To(Equal(word))
			}()
		}
		wg.Wait()

		for i := range workers {
			Expect(ledger.closes(i)).To(Equal([]int{1, 1, 1, 1}), "worker %d", i)
		}
		Expect(testutil.ToFloat64(m.StreamsActive)).To(BeZero())
		Expect(testutil.ToFloat64(m.RequestsTotal.WithLabelValues("chat_completion_stream", metrics.OutcomeOK))).To(Equal(float64(workers)))
	})
})

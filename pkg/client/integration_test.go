package client_test

import (
	"context"
	"net/http/httptest"
	"strings"

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
	"github.com/papercomputeco/marcus/pkg/stream"
)

var _ = Describe("Client against the mock service", func() {
	var (
		ctx context.Context
		c   *client.Client
		m   *metrics.Collectors
	)

	BeforeEach(func() {
		ctx = context.Background()

		s, err := mockserver.NewServer(mockserver.Config{}, local.NewDriver(), logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		ts := httptest.NewServer(s.Handler())
		DeferCleanup(ts.Close)

		m = metrics.New(prometheus.NewRegistry())
		c, err = client.New(client.Config{
			BaseURL: ts.URL,
			Models:  models.Default(),
			Metrics: m,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("inference", func() {
		It("streams a chat completion", func() {
			r, err := c.ChatCompletionStream(ctx, llm.ChatRequest{
				Model:    models.DefaultModel,
				Messages: userMessages("hello there"),
			})
			Expect(err).NotTo(HaveOccurred())

			var text strings.Builder
			var kinds []stream.Kind
			for ev, err := range r.All() {
				Expect(err).NotTo(HaveOccurred())
				kinds = append(kinds, ev.Kind)
				text.WriteString(ev.Text())
			}

			Expect(text.String()).To(Equal("You said: hello there"))
			Expect(kinds[len(kinds)-1]).To(Equal(stream.KindFinal))
			Expect(testutil.ToFloat64(m.StreamsActive)).To(BeZero())
			Expect(testutil.ToFloat64(m.RequestsTotal.WithLabelValues("chat_completion_stream", metrics.OutcomeOK))).To(Equal(1.0))
		})

		It("answers a single-shot chat completion", func() {
			resp, err := c.ChatCompletion(ctx, llm.ChatRequest{
				Model:    models.DefaultModel,
				Messages: userMessages("ping"),
			})
			Expect(err).NotTo(HaveOccurred())

			var out llm.CompletionResponse
			Expect(resp.Decode(&out)).To(Succeed())
			Expect(out.CompletionMessage.Content).To(Equal("You said: ping"))
		})

		It("streams a text completion", func() {
			r, err := c.TextCompletionStream(ctx, llm.CompletionRequest{Model: models.DefaultModel, Prompt: "Once"})
			Expect(err).NotTo(HaveOccurred())

			var last *stream.Event
			for ev, err := range r.All() {
				Expect(err).NotTo(HaveOccurred())
				last = ev
			}
			Expect(last.Kind).To(Equal(stream.KindFinal))
			Expect(last.Get("stop_reason").String()).To(Equal("end_of_turn"))
		})

		It("answers a single-shot text completion", func() {
			resp, err := c.TextCompletion(ctx, llm.CompletionRequest{Model: models.DefaultModel, Prompt: "Once"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Get("content").String()).To(HavePrefix("Once"))
		})

		It("returns embeddings", func() {
			resp, err := c.Embeddings(ctx, llm.EmbeddingsRequest{Model: models.DefaultModel, Input: []string{"a", "b"}})
			Expect(err).NotTo(HaveOccurred())

			var out llm.EmbeddingsResponse
			Expect(resp.Decode(&out)).To(Succeed())
			Expect(out.Embeddings).To(HaveLen(2))
		})

		It("rejects an empty input list locally", func() {
			_, err := c.Embeddings(ctx, llm.EmbeddingsRequest{Model: models.DefaultModel, Input: []string{}})
			Expect(err).To(MatchError(llm.ErrValidation))
			Expect(testutil.ToFloat64(m.RequestsTotal.WithLabelValues("embeddings", metrics.OutcomeValidation))).To(BeZero())
		})
	})

	Describe("memory", func() {
		docs := []llm.Document{
			{ID: "d1", Text: "the sky is blue", Metadata: map[string]any{"source": "notes"}},
			{ID: "d2", Text: "grass is green"},
		}

		BeforeEach(func() {
			resp, err := c.MemoryAdd(ctx, "kb", docs)
			Expect(err).NotTo(HaveOccurred())

			var out llm.MemoryAddResponse
			Expect(resp.Decode(&out)).To(Succeed())
			Expect(out.IDs).To(Equal([]string{"d1", "d2"}))
		})

		It("returns added documents unchanged", func() {
			resp, err := c.MemoryGet(ctx, "kb", []string{"d1", "d2"})
			Expect(err).NotTo(HaveOccurred())

			var out llm.MemoryGetResponse
			Expect(resp.Decode(&out)).To(Succeed())
			Expect(out.Documents).To(Equal(docs))
		})

		It("returns an empty result after delete", func() {
			_, err := c.MemoryDelete(ctx, "kb", []string{"d1"})
			Expect(err).NotTo(HaveOccurred())

			resp, err := c.MemoryGet(ctx, "kb", []string{"d1"})
			Expect(err).NotTo(HaveOccurred())

			var out llm.MemoryGetResponse
			Expect(resp.Decode(&out)).To(Succeed())
			Expect(out.Documents).To(BeEmpty())
		})

		It("returns equal results for repeated get and search", func() {
			get1, err := c.MemoryGet(ctx, "kb", []string{"d2", "d1"})
			Expect(err).NotTo(HaveOccurred())
			get2, err := c.MemoryGet(ctx, "kb", []string{"d2", "d1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(get2.String()).To(MatchJSON(get1.String()))

			search1, err := c.MemorySearch(ctx, "kb", "blue green", 0)
			Expect(err).NotTo(HaveOccurred())
			search2, err := c.MemorySearch(ctx, "kb", "blue green", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(search2.String()).To(MatchJSON(search1.String()))
		})

		It("ranks search results", func() {
			resp, err := c.MemorySearch(ctx, "kb", "blue sky", 1)
			Expect(err).NotTo(HaveOccurred())

			var out llm.MemorySearchResponse
			Expect(resp.Decode(&out)).To(Succeed())
			Expect(out.Results).To(HaveLen(1))
			Expect(out.Results[0].Document.ID).To(Equal("d1"))
		})
	})
})

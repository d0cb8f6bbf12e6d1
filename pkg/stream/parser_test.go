package stream_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/sse"
	"github.com/papercomputeco/marcus/pkg/stream"
)

var _ = Describe("ParseFrame", func() {
	It("keeps the payload verbatim", func() {
		ev, err := stream.ParseFrame(&sse.Frame{Data: `{"chunk":"Hi"}`, Offset: 12})
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.String()).To(Equal(`{"chunk":"Hi"}`))
		Expect(ev.Offset).To(Equal(int64(12)))
		Expect(ev.Get("chunk").String()).To(Equal("Hi"))
	})

	It("decodes into a struct", func() {
		ev, err := stream.ParseFrame(&sse.Frame{Data: `{"chunk":" there"}`})
		Expect(err).NotTo(HaveOccurred())

		var out struct {
			Chunk string `json:"chunk"`
		}
		Expect(ev.Decode(&out)).To(Succeed())
		Expect(out.Chunk).To(Equal(" there"))
	})

	It("reports invalid JSON as a decode error for that frame", func() {
		ev, err := stream.ParseFrame(&sse.Frame{Data: "not-json", Offset: 40})
		Expect(ev).To(BeNil())
		Expect(errors.Is(err, llm.ErrDecode)).To(BeTrue())

		var decErr *llm.DecodeError
		Expect(errors.As(err, &decErr)).To(BeTrue())
		Expect(decErr.RawPayload).To(Equal("not-json"))
		Expect(decErr.Offset).To(Equal(int64(40)))
		Expect(decErr.Cause).To(HaveOccurred())
	})

	It("reports an empty payload as a decode error", func() {
		_, err := stream.ParseFrame(&sse.Frame{Data: ""})
		Expect(err).To(MatchError(stream.ErrEmptyPayload))
	})

	It("treats [DONE] as invalid JSON", func() {
		_, err := stream.ParseFrame(&sse.Frame{Data: "[DONE]"})
		Expect(errors.Is(err, llm.ErrDecode)).To(BeTrue())
	})

	DescribeTable("classifies payloads",
		func(payload string, want stream.Kind) {
			ev, err := stream.ParseFrame(&sse.Frame{Data: payload})
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Kind).To(Equal(want))
		},
		Entry("text chunk", `{"chunk":"Hi"}`, stream.KindChunk),
		Entry("progress event", `{"event":{"event_type":"progress","delta":"a"}}`, stream.KindChunk),
		Entry("complete event", `{"event":{"event_type":"complete","stop_reason":"end_of_turn"}}`, stream.KindFinal),
		Entry("done flag", `{"done":true}`, stream.KindFinal),
		Entry("done false", `{"done":false,"chunk":"x"}`, stream.KindChunk),
		Entry("stop reason", `{"stop_reason":"end_of_turn"}`, stream.KindFinal),
		Entry("completion message", `{"completion_message":{"role":"assistant","content":"hi"}}`, stream.KindFinal),
		Entry("error object", `{"error":{"message":"overloaded"}}`, stream.KindError),
		Entry("null error", `{"error":null,"chunk":"x"}`, stream.KindChunk),
		Entry("bare string", `"hello"`, stream.KindChunk),
		Entry("array", `[1,2,3]`, stream.KindChunk),
	)

	DescribeTable("extracts completion text",
		func(payload, want string) {
			ev, err := stream.ParseFrame(&sse.Frame{Data: payload})
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Text()).To(Equal(want))
		},
		Entry("chat delta", `{"event":{"event_type":"progress","delta":"Hi"}}`, "Hi"),
		Entry("text delta", `{"delta":" there"}`, " there"),
		Entry("chunk", `{"chunk":"Hi"}`, "Hi"),
		Entry("completion message", `{"completion_message":{"role":"assistant","content":"done"}}`, "done"),
		Entry("no text", `{"event":{"event_type":"start"}}`, ""),
		Entry("non-string delta", `{"delta":5}`, ""),
		Entry("non-object", `[1]`, ""),
	)
})

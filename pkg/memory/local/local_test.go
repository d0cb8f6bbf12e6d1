package local

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
	"github.com/papercomputeco/marcus/pkg/memory/memorytest"
)

var _ = Describe("Local Memory Driver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	memorytest.DriverBehaviours(func() memory.Driver {
		return NewDriver()
	})

	Describe("NewDriver", func() {
		It("returns a non-nil driver", func() {
			d := NewDriver()
			Expect(d).NotTo(BeNil())
			Expect(d.collections).NotTo(BeNil())
		})
	})

	Describe("Get", func() {
		It("returns a copy so callers cannot mutate internal state", func() {
			d := NewDriver()
			_, err := d.Add(ctx, "notes", []llm.Document{
				{ID: "a", Text: "original", Metadata: map[string]any{"k": "v"}},
			})
			Expect(err).NotTo(HaveOccurred())

			docs, err := d.Get(ctx, "notes", []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			docs[0].Text = "mutated"
			docs[0].Metadata["k"] = "mutated"

			internal, err := d.Get(ctx, "notes", []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(internal[0].Text).To(Equal("original"))
			Expect(internal[0].Metadata).To(HaveKeyWithValue("k", "v"))
		})
	})

	Describe("Delete", func() {
		It("drops empty collections", func() {
			d := NewDriver()
			_, err := d.Add(ctx, "notes", []llm.Document{{ID: "a", Text: "x"}})
			Expect(err).NotTo(HaveOccurred())

			_, err = d.Delete(ctx, "notes", []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.collections).NotTo(HaveKey("notes"))
		})
	})

	Describe("interface compliance", func() {
		It("satisfies memory.Driver", func() {
			var _ memory.Driver = NewDriver()
		})
	})

	Describe("Close", func() {
		It("is a no-op and returns nil", func() {
			d := NewDriver()
			Expect(d.Close()).To(Succeed())
		})
	})
})

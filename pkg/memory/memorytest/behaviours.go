// Package memorytest holds the behaviour every memory.Driver must share, as
// ginkgo specs that driver test suites can include.
package memorytest

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

// DriverBehaviours registers the shared specs. newDriver is called before
// each spec and the driver is closed after it.
func DriverBehaviours(newDriver func() memory.Driver) {
	var (
		ctx context.Context
		d   memory.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		d = newDriver()
		DeferCleanup(func() {
			Expect(d.Close()).To(Succeed())
		})
	})

	Describe("Add", func() {
		It("returns ids in input order", func() {
			ids, err := d.Add(ctx, "notes", []llm.Document{
				{ID: "a", Text: "alpha"},
				{ID: "b", Text: "beta"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"a", "b"}))
		})

		It("assigns ids to documents without one", func() {
			ids, err := d.Add(ctx, "notes", []llm.Document{{Text: "anonymous"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(1))
			Expect(ids[0]).NotTo(BeEmpty())

			docs, err := d.Get(ctx, "notes", ids)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Text).To(Equal("anonymous"))
		})

		It("replaces a document with the same id", func() {
			_, err := d.Add(ctx, "notes", []llm.Document{{ID: "a", Text: "old"}})
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Add(ctx, "notes", []llm.Document{{ID: "a", Text: "new"}})
			Expect(err).NotTo(HaveOccurred())

			docs, err := d.Get(ctx, "notes", []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Text).To(Equal("new"))
		})
	})

	Describe("Get", func() {
		BeforeEach(func() {
			_, err := d.Add(ctx, "notes", []llm.Document{
				{ID: "d1", Text: "hello world", Metadata: map[string]any{"source": "test"}},
				{ID: "d2", Text: "goodbye world"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("round trips text and metadata", func() {
			docs, err := d.Get(ctx, "notes", []string{"d1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("d1"))
			Expect(docs[0].Text).To(Equal("hello world"))
			Expect(docs[0].Metadata).To(HaveKeyWithValue("source", "test"))
		})

		It("returns documents in request order and omits unknown ids", func() {
			docs, err := d.Get(ctx, "notes", []string{"d2", "missing", "d1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].ID).To(Equal("d2"))
			Expect(docs[1].ID).To(Equal("d1"))
		})

		It("keeps collections apart", func() {
			docs, err := d.Get(ctx, "other", []string{"d1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})

		It("is idempotent", func() {
			first, err := d.Get(ctx, "notes", []string{"d1", "d2"})
			Expect(err).NotTo(HaveOccurred())
			second, err := d.Get(ctx, "notes", []string{"d1", "d2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("Delete", func() {
		It("reports the ids that existed", func() {
			_, err := d.Add(ctx, "notes", []llm.Document{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}})
			Expect(err).NotTo(HaveOccurred())

			deleted, err := d.Delete(ctx, "notes", []string{"a", "zzz"})
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(Equal([]string{"a"}))

			docs, err := d.Get(ctx, "notes", []string{"a", "b"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("b"))
		})

		It("does nothing for an unknown collection", func() {
			deleted, err := d.Delete(ctx, "ghost", []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeEmpty())
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			_, err := d.Add(ctx, "kb", []llm.Document{
				{ID: "go", Text: "Go is a programming language designed at Google"},
				{ID: "paris", Text: "Paris is the capital of France"},
				{ID: "python", Text: "Python is a programming language"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("ranks documents by query term overlap", func() {
			results, err := d.Search(ctx, "kb", "programming language Google", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Document.ID).To(Equal("go"))
			Expect(results[0].Score).To(BeNumerically("==", 1))
			Expect(results[1].Document.ID).To(Equal("python"))
		})

		It("honours k", func() {
			results, err := d.Search(ctx, "kb", "is", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
		})

		It("returns nothing when no term matches", func() {
			results, err := d.Search(ctx, "kb", "quantum chromodynamics", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("is idempotent", func() {
			first, err := d.Search(ctx, "kb", "capital language", 5)
			Expect(err).NotTo(HaveOccurred())
			second, err := d.Search(ctx, "kb", "capital language", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})
}

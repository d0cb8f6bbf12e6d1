package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

var _ = Describe("Search helpers", func() {
	Describe("Terms", func() {
		It("lower-cases and splits on punctuation", func() {
			Expect(memory.Terms("Hello, World! go-lang 3x")).To(Equal([]string{"hello", "world", "go", "lang", "3x"}))
		})
	})

	Describe("Score", func() {
		It("is the fraction of distinct query terms found", func() {
			Expect(memory.Score("paris france paris", "Paris is lovely")).To(BeNumerically("==", 0.5))
		})

		It("is zero for an empty query", func() {
			Expect(memory.Score("  ", "anything")).To(BeZero())
		})
	})

	Describe("Rank", func() {
		docs := []llm.Document{
			{ID: "b", Text: "red apple"},
			{ID: "a", Text: "red car"},
			{ID: "c", Text: "blue sky"},
		}

		It("orders by score then id and drops misses", func() {
			results := memory.Rank("red apple", docs, 0)
			Expect(results).To(HaveLen(2))
			Expect(results[0].Document.ID).To(Equal("b"))
			Expect(results[1].Document.ID).To(Equal("a"))
		})

		It("breaks ties by id", func() {
			results := memory.Rank("red", docs, 10)
			Expect(results).To(HaveLen(2))
			Expect(results[0].Document.ID).To(Equal("a"))
		})

		It("defaults k", func() {
			many := make([]llm.Document, 10)
			for i := range many {
				many[i] = llm.Document{ID: string(rune('a' + i)), Text: "match"}
			}
			Expect(memory.Rank("match", many, -1)).To(HaveLen(memory.DefaultSearchK))
		})
	})

	Describe("AssignIDs", func() {
		It("fills in missing ids without touching the input", func() {
			in := []llm.Document{{ID: "keep"}, {}}
			out := memory.AssignIDs(in)
			Expect(out[0].ID).To(Equal("keep"))
			Expect(out[1].ID).NotTo(BeEmpty())
			Expect(in[1].ID).To(BeEmpty())
		})
	})
})

package sqlite_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/logger"
	"github.com/papercomputeco/marcus/pkg/memory"
	"github.com/papercomputeco/marcus/pkg/memory/memorytest"
	"github.com/papercomputeco/marcus/pkg/memory/sqlite"
)

var _ = Describe("SQLite Memory Driver", func() {
	memorytest.DriverBehaviours(func() memory.Driver {
		d, err := sqlite.NewDriver(sqlite.Config{DBPath: ":memory:"}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	Describe("NewDriver", func() {
		It("requires a database path", func() {
			_, err := sqlite.NewDriver(sqlite.Config{}, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("database path is required")))
		})
	})

	Describe("persistence", func() {
		It("keeps documents across reopen", func() {
			ctx := context.Background()
			path := filepath.Join(GinkgoT().TempDir(), "memory.db")

			d, err := sqlite.NewDriver(sqlite.Config{DBPath: path}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Add(ctx, "notes", []llm.Document{{ID: "a", Text: "durable"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Close()).To(Succeed())

			d, err = sqlite.NewDriver(sqlite.Config{DBPath: path}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			docs, err := d.Get(ctx, "notes", []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Text).To(Equal("durable"))
			Expect(docs[0].Metadata).To(BeNil())
		})
	})
})

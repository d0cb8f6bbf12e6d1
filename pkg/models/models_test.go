package models_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/models"
)

var _ = Describe("Registry", func() {
	var r *models.Registry

	BeforeEach(func() {
		r = models.Default()
	})

	Describe("MapToProvider", func() {
		It("maps the default model", func() {
			id, err := r.MapToProvider(models.DefaultModel)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("llama3.2:3b"))
		})

		It("rejects identifiers that name no model", func() {
			_, err := r.MapToProvider("gpt-9000")
			Expect(err).To(MatchError(models.ErrUnknownModel))
		})

		It("rejects known models missing from the provider map", func() {
			_, err := r.MapToProvider("Llama3.1-8B")
			Expect(err).To(MatchError(models.ErrUnsupportedModel))
			Expect(err.Error()).To(ContainSubstring("Llama3.2-3B"))
		})
	})

	Describe("Register", func() {
		It("accepts mapped models", func() {
			Expect(r.Register(models.Model{ID: "Llama3.2-1B"})).To(Succeed())
			Expect(r.Registered("Llama3.2-1B")).To(BeTrue())
		})

		It("rejects unmapped models", func() {
			err := r.Register(models.Model{ID: "Llama3.1-8B"})
			Expect(err).To(MatchError(models.ErrUnsupportedModel))
			Expect(r.Registered("Llama3.1-8B")).To(BeFalse())
		})

		It("rejects a conflicting provider id", func() {
			err := r.Register(models.Model{ID: "Llama3.2-3B", ProviderID: "llama3.2:1b"})
			Expect(err).To(HaveOccurred())
		})

		It("recognizes a registered model by its provider id", func() {
			Expect(r.Register(models.Model{ID: "Llama3.2-3B"})).To(Succeed())
			Expect(r.Registered("llama3.2:3b")).To(BeTrue())
			Expect(r.Registered("llama3.2:1b")).To(BeFalse())
		})

		It("registers every mapped model at once", func() {
			r.RegisterAll()
			for id := range models.OllamaModels {
				Expect(r.Registered(id)).To(BeTrue(), id)
			}
			Expect(r.Registered("Llama3.1-8B")).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("returns entries sorted by id", func() {
			list := r.List()
			Expect(list).To(HaveLen(len(models.OllamaModels)))
			for i := 1; i < len(list); i++ {
				Expect(list[i-1].ID < list[i].ID).To(BeTrue())
			}
		})

		It("copies the provider map", func() {
			src := map[string]string{"Llama3.2-3B": "a"}
			reg := models.New(src)
			src["Llama3.2-3B"] = "b"

			id, err := reg.MapToProvider("Llama3.2-3B")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("a"))
		})
	})
})

package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/marcus/pkg/dotdir"
	"github.com/papercomputeco/marcus/pkg/llm"
)

var _ = Describe("dotdir.Manager conversation", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	Describe("LoadConversation", func() {
		It("returns nil when nothing was saved", func() {
			conv, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(conv).To(BeNil())
		})

		It("loads a saved conversation file", func() {
			data := `{"model":"Llama3.2-3B","messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"hi there"}]}`
			Expect(os.WriteFile(filepath.Join(tmpDir, "conversation.json"), []byte(data), 0o600)).To(Succeed())

			conv, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(conv.Model).To(Equal("Llama3.2-3B"))
			Expect(conv.Messages).To(HaveLen(2))
			Expect(conv.Messages[1].Role).To(Equal("assistant"))
			Expect(conv.Messages[1].Content).To(Equal("hi there"))
		})

		It("returns error for invalid JSON", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "conversation.json"), []byte("not json"), 0o600)).To(Succeed())

			conv, err := m.LoadConversation(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(conv).To(BeNil())
		})
	})

	Describe("SaveConversation", func() {
		It("returns error for nil conversation", func() {
			Expect(m.SaveConversation(nil, tmpDir)).NotTo(Succeed())
		})

		It("overwrites a saved conversation", func() {
			first := &dotdir.Conversation{Model: "a", Messages: []llm.Message{llm.NewTextMessage("user", "first")}}
			second := &dotdir.Conversation{Model: "b", Messages: []llm.Message{llm.NewTextMessage("user", "second")}}

			Expect(m.SaveConversation(first, tmpDir)).To(Succeed())
			Expect(m.SaveConversation(second, tmpDir)).To(Succeed())

			loaded, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Model).To(Equal("b"))
		})

		It("round trips", func() {
			conv := &dotdir.Conversation{
				Model: "Llama3.2-3B",
				Messages: []llm.Message{
					llm.NewTextMessage("system", "You are a helpful assistant."),
					llm.NewTextMessage("user", "Tell me about Go."),
					llm.NewTextMessage("assistant", "Go is a statically typed, compiled language."),
				},
			}

			Expect(m.SaveConversation(conv, tmpDir)).To(Succeed())

			loaded, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(conv))
		})
	})

	Describe("ClearConversation", func() {
		It("removes the saved conversation", func() {
			Expect(m.SaveConversation(&dotdir.Conversation{}, tmpDir)).To(Succeed())
			Expect(m.ClearConversation(tmpDir)).To(Succeed())

			loaded, err := m.LoadConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("succeeds when nothing was saved", func() {
			Expect(m.ClearConversation(tmpDir)).To(Succeed())
		})
	})
})

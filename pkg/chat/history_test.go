package chat_test

import (
	"fmt"

	"github.com/killallgit/pharmai/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FormatHistory", func() {
	It("should return an empty history for an empty transcript", func() {
		Expect(chat.FormatHistory(chat.NewTranscript())).To(BeEmpty())
		Expect(chat.FormatHistory(nil)).To(BeEmpty())
	})

	It("should map roles and keep order", func() {
		t := &chat.Transcript{Messages: []chat.Message{
			chat.NewUserMessage("What is ibuprofen?"),
			chat.NewReasoningMessage("Consider NSAIDs..."),
			chat.NewAssistantMessage("Ibuprofen is an NSAID."),
			chat.NewUserMessage("And naproxen?"),
		}}

		Expect(chat.FormatHistory(t)).To(Equal([]chat.HistoryEntry{
			{Role: "user", Content: "What is ibuprofen?"},
			{Role: "assistant", Content: "Ibuprofen is an NSAID."},
			{Role: "user", Content: "And naproxen?"},
		}))
	})

	It("should treat unknown roles as assistant and empty content as empty", func() {
		t := &chat.Transcript{Messages: []chat.Message{
			{Role: "narrator"},
		}}

		Expect(chat.FormatHistory(t)).To(Equal([]chat.HistoryEntry{
			{Role: "assistant", Content: ""},
		}))
	})

	It("should be pure: formatting twice gives the same result and leaves the input untouched", func() {
		t := &chat.Transcript{Messages: []chat.Message{
			chat.NewUserMessage("q"),
			chat.NewReasoningMessage("r"),
			chat.NewAssistantMessage("a"),
		}}
		before := t.Clone()

		first := chat.FormatHistory(t)
		second := chat.FormatHistory(t)

		Expect(second).To(Equal(first))
		Expect(t.Messages).To(Equal(before.Messages))
	})

	DescribeTable("should drop exactly the thinking traces",
		func(reasoning, other int) {
			t := chat.NewTranscript()
			for i := 0; i < other; i++ {
				t.Append(chat.NewUserMessage(fmt.Sprintf("question %d", i)))
				if i < reasoning {
					t.Append(chat.NewReasoningMessage(fmt.Sprintf("thought %d", i)))
				}
			}
			for i := other; i < reasoning; i++ {
				t.Append(chat.NewReasoningMessage(fmt.Sprintf("thought %d", i)))
			}

			Expect(t.Len()).To(Equal(reasoning + other))
			Expect(chat.FormatHistory(t)).To(HaveLen(other))
		},
		Entry("no messages", 0, 0),
		Entry("only thoughts", 3, 0),
		Entry("no thoughts", 0, 4),
		Entry("mixed", 2, 5),
		Entry("more thoughts than answers", 6, 1),
	)
})

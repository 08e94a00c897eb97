package stream_test

import (
	"context"
	"errors"

	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/stream"
	"github.com/killallgit/pharmai/pkg/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type snapshotMessage struct {
	Role      chat.Role
	Reasoning bool
	Content   string
}

func view(t *chat.Transcript) []snapshotMessage {
	out := make([]snapshotMessage, 0, t.Len())
	for _, m := range t.Messages {
		out = append(out, snapshotMessage{Role: m.Role, Reasoning: m.IsReasoning(), Content: m.Content})
	}
	return out
}

func user(content string) snapshotMessage {
	return snapshotMessage{Role: chat.RoleUser, Content: content}
}

func thinking(content string) snapshotMessage {
	return snapshotMessage{Role: chat.RoleAssistant, Reasoning: true, Content: content}
}

func answer(content string) snapshotMessage {
	return snapshotMessage{Role: chat.RoleAssistant, Content: content}
}

var ibuprofenChunks = []stream.ResponseChunk{
	stream.TextChunk("Consider NSAIDs"),
	stream.TextChunk("...", "Ibuprofen is"),
	stream.TextChunk(" an NSAIDatro."),
}

var _ = Describe("Segmenter", func() {
	var (
		ctx        context.Context
		source     *testutil.FakeSource
		transcript *chat.Transcript
	)

	newSegmenter := func(cfg stream.Config) *stream.Segmenter {
		if cfg.Source == nil {
			cfg.Source = source
		}
		if cfg.Prompt == nil {
			cfg.Prompt = testutil.EchoPrompt{}
		}
		seg, err := stream.NewSegmenter(cfg)
		Expect(err).NotTo(HaveOccurred())
		return seg
	}

	collect := func(seg *stream.Segmenter, text string) [][]snapshotMessage {
		var snapshots [][]snapshotMessage
		for snap := range seg.Segment(ctx, text, transcript) {
			Expect(snap).To(BeIdenticalTo(transcript))
			snapshots = append(snapshots, view(snap))
		}
		return snapshots
	}

	BeforeEach(func() {
		ctx = context.Background()
		source = testutil.NewFakeSource(ibuprofenChunks...)
		transcript = chat.NewTranscript()
	})

	Describe("NewSegmenter", func() {
		It("should require a source", func() {
			_, err := stream.NewSegmenter(stream.Config{Prompt: testutil.EchoPrompt{}})
			Expect(err).To(HaveOccurred())
		})

		It("should require a prompt builder", func() {
			_, err := stream.NewSegmenter(stream.Config{Source: source})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("a reply with thinking", func() {
		It("should split reasoning and answer across four snapshots", func() {
			transcript.Append(chat.NewUserMessage("What is ibuprofen?"))

			snapshots := collect(newSegmenter(stream.Config{}), "What is ibuprofen?")

			Expect(snapshots).To(Equal([][]snapshotMessage{
				{user("What is ibuprofen?"), thinking("Consider NSAIDs")},
				{user("What is ibuprofen?"), thinking("Consider NSAIDs...")},
				{user("What is ibuprofen?"), thinking("Consider NSAIDs..."), answer("Ibuprofen is")},
				{user("What is ibuprofen?"), thinking("Consider NSAIDs..."), answer("Ibuprofen is an NSAIDatro.")},
			}))
			Expect(source.Closed()).To(BeTrue())
		})

		It("should emit the boundary twice: reasoning finalized, then answer opened", func() {
			source = testutil.NewFakeSource(
				stream.TextChunk("a"),
				stream.TextChunk("b"),
				stream.TextChunk("c", "X"),
				stream.TextChunk("Y"),
			)

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(HaveLen(5))
			Expect(snapshots[2]).To(Equal([]snapshotMessage{thinking("abc")}))
			Expect(snapshots[3]).To(Equal([]snapshotMessage{thinking("abc"), answer("X")}))
			Expect(snapshots[4]).To(Equal([]snapshotMessage{thinking("abc"), answer("XY")}))
		})

		It("should only ever grow the buffers", func() {
			source = testutil.NewFakeSource(
				stream.TextChunk("Consider "),
				stream.TextChunk(""),
				stream.TextChunk("NSAIDs", "Ibu"),
				stream.TextChunk("profen"),
				stream.TextChunk(""),
				stream.TextChunk(" is an NSAID."),
			)

			lastReasoning, lastAnswer := -1, -1
			answerStarted := false
			var frozen string
			for snap := range newSegmenter(stream.Config{}).Segment(ctx, "q", transcript) {
				reasoning := snap.Messages[0].Content
				Expect(len(reasoning)).To(BeNumerically(">=", lastReasoning))
				lastReasoning = len(reasoning)

				if snap.Len() == 2 {
					if !answerStarted {
						answerStarted = true
						frozen = reasoning
					}
					Expect(reasoning).To(Equal(frozen))
					Expect(len(snap.Messages[1].Content)).To(BeNumerically(">=", lastAnswer))
					lastAnswer = len(snap.Messages[1].Content)
				}
			}

			Expect(view(transcript)).To(Equal([]snapshotMessage{
				thinking("Consider NSAIDs"),
				answer("Ibuprofen is an NSAID."),
			}))
		})
	})

	Describe("history and prompt", func() {
		It("should send history without thinking traces and before the placeholder", func() {
			transcript.Append(chat.NewUserMessage("first"))
			transcript.Append(chat.NewReasoningMessage("hmm"))
			transcript.Append(chat.NewAssistantMessage("first answer"))
			transcript.Append(chat.NewUserMessage("What is ibuprofen?"))

			collect(newSegmenter(stream.Config{}), "What is ibuprofen?")

			Expect(source.LastHistory()).To(Equal([]chat.HistoryEntry{
				{Role: "user", Content: "first"},
				{Role: "assistant", Content: "first answer"},
				{Role: "user", Content: "What is ibuprofen?"},
			}))
			Expect(source.LastPrompt()).To(Equal("Q:What is ibuprofen?"))
		})

		It("should include retrieved reference material", func() {
			retriever := &testutil.StaticRetriever{Reference: "NSAID monograph"}

			collect(newSegmenter(stream.Config{Retriever: retriever}), "What is ibuprofen?")

			Expect(retriever.Calls).To(Equal(1))
			Expect(source.LastPrompt()).To(Equal("R:NSAID monograph|Q:What is ibuprofen?"))
		})

		It("should carry on without reference material when lookup fails", func() {
			retriever := &testutil.StaticRetriever{Err: errors.New("index offline")}

			snapshots := collect(newSegmenter(stream.Config{Retriever: retriever}), "What is ibuprofen?")

			Expect(source.LastPrompt()).To(Equal("Q:What is ibuprofen?"))
			Expect(snapshots).To(HaveLen(4))
		})
	})

	DescribeTable("empty input",
		func(text string) {
			transcript.Append(chat.NewUserMessage(text))

			snapshots := collect(newSegmenter(stream.Config{}), text)

			Expect(snapshots).To(HaveLen(1))
			Expect(transcript.Len()).To(Equal(2))
			Expect(view(transcript)[1]).To(Equal(answer(stream.EmptyInputNotice)))
			Expect(source.OpenCount()).To(BeZero())
			Expect(source.Reads()).To(BeZero())
		},
		Entry("empty string", ""),
		Entry("spaces", "   "),
		Entry("mixed whitespace", "\t\n "),
	)

	Describe("upstream failures", func() {
		It("should append one notice when the stream cannot be opened", func() {
			source.SetOpenError(errors.New("quota exceeded"))
			transcript.Append(chat.NewUserMessage("q"))

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(HaveLen(1))
			Expect(view(transcript)).To(Equal([]snapshotMessage{
				user("q"),
				answer("Sorry, an error occurred: quota exceeded"),
			}))
		})

		It("should append one notice after the chunks that made it through", func() {
			source.SetFailAfter(2, errors.New("connection reset"))
			transcript.Append(chat.NewUserMessage("What is ibuprofen?"))

			var snapshots [][]snapshotMessage
			Expect(func() {
				snapshots = collect(newSegmenter(stream.Config{}), "What is ibuprofen?")
			}).NotTo(Panic())

			Expect(snapshots).To(HaveLen(4))
			Expect(view(transcript)).To(Equal([]snapshotMessage{
				user("What is ibuprofen?"),
				thinking("Consider NSAIDs..."),
				answer("Ibuprofen is"),
				answer("Sorry, an error occurred: connection reset"),
			}))
			Expect(source.Closed()).To(BeTrue())
		})

		It("should report a failure before any chunk under the placeholder", func() {
			source.SetFailAfter(0, errors.New("bad gateway"))

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(HaveLen(1))
			Expect(view(transcript)).To(Equal([]snapshotMessage{
				thinking(""),
				answer("Sorry, an error occurred: bad gateway"),
			}))
		})

		It("should turn a prompt failure into a notice without calling upstream", func() {
			seg := newSegmenter(stream.Config{Prompt: testutil.EchoPrompt{Err: errors.New("template broke")}})

			snapshots := collect(seg, "q")

			Expect(snapshots).To(HaveLen(1))
			Expect(source.OpenCount()).To(BeZero())
			Expect(transcript.Messages[0].Content).To(ContainSubstring("template broke"))
		})

		It("should treat cancellation as a failure", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			ctx = cancelled

			collect(newSegmenter(stream.Config{}), "q")

			last, _ := transcript.Last()
			Expect(last.Content).To(Equal("Sorry, an error occurred: context canceled"))
			Expect(stream.IsErrorNotice(last.Content)).To(BeTrue())
			Expect(stream.IsErrorNotice(stream.EmptyInputNotice)).To(BeFalse())
		})
	})

	Describe("unusual chunks", func() {
		It("should go straight to answering when the first chunk is a boundary", func() {
			source = testutil.NewFakeSource(
				stream.TextChunk("", "Ibuprofen"),
				stream.TextChunk(" is an NSAID."),
			)

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(HaveLen(3))
			Expect(view(transcript)).To(Equal([]snapshotMessage{
				thinking(""),
				answer("Ibuprofen is an NSAID."),
			}))
		})

		It("should treat a second boundary as a plain continuation", func() {
			source = testutil.NewFakeSource(
				stream.TextChunk("think", "A"),
				stream.TextChunk("B", "dropped"),
				stream.TextChunk("C"),
			)

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(HaveLen(4))
			Expect(view(transcript)).To(Equal([]snapshotMessage{
				thinking("think"),
				answer("ABC"),
			}))
		})

		It("should emit a snapshot for an empty chunk without changing content", func() {
			source = testutil.NewFakeSource(
				stream.TextChunk("a"),
				stream.ResponseChunk{},
				stream.TextChunk("b"),
			)

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(HaveLen(3))
			Expect(snapshots[1]).To(Equal([]snapshotMessage{thinking("a")}))
			Expect(view(transcript)).To(Equal([]snapshotMessage{thinking("ab")}))
		})

		It("should use only the first part of an oversized chunk", func() {
			source = testutil.NewFakeSource(
				stream.TextChunk("a", "b", "c"),
			)

			collect(newSegmenter(stream.Config{}), "q")

			Expect(view(transcript)).To(Equal([]snapshotMessage{thinking("a")}))
		})

		It("should end quietly on an empty stream", func() {
			source = testutil.NewFakeSource()

			snapshots := collect(newSegmenter(stream.Config{}), "q")

			Expect(snapshots).To(BeEmpty())
			Expect(view(transcript)).To(Equal([]snapshotMessage{thinking("")}))
		})
	})

	Describe("stopping early", func() {
		It("should leave the transcript well-formed and close the stream", func() {
			seg := newSegmenter(stream.Config{})

			for range seg.Segment(ctx, "q", transcript) {
				break
			}

			Expect(view(transcript)).To(Equal([]snapshotMessage{thinking("Consider NSAIDs")}))
			Expect(source.Reads()).To(Equal(1))
			Expect(source.Closed()).To(BeTrue())
		})

		It("should not open the answer when stopped at the boundary", func() {
			seg := newSegmenter(stream.Config{})

			count := 0
			for range seg.Segment(ctx, "q", transcript) {
				count++
				if count == 2 {
					break
				}
			}

			Expect(view(transcript)).To(Equal([]snapshotMessage{thinking("Consider NSAIDs...")}))
		})
	})
})

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/logger"
)

const (
	// EmptyInputNotice is appended instead of calling upstream for a blank question
	EmptyInputNotice = "Please provide a non-empty text message. Empty inputs are not allowed."

	errorNoticePrefix = "Sorry, an error occurred: "
)

// ErrorNotice renders an upstream failure as transcript text
func ErrorNotice(err error) string {
	return errorNoticePrefix + err.Error()
}

// IsErrorNotice reports whether content is a rendered failure
func IsErrorNotice(content string) bool {
	return strings.HasPrefix(content, errorNoticePrefix)
}

// PromptBuilder turns a question and optional reference material into the outbound prompt
type PromptBuilder interface {
	Build(question, reference string) (string, error)
}

// Retriever looks up reference material for a question
type Retriever interface {
	Retrieve(ctx context.Context, question string) (string, error)
}

// Config wires a Segmenter. Source and Prompt are required.
type Config struct {
	Source    Source
	Prompt    PromptBuilder
	Retriever Retriever
	Logger    *logger.Logger
}

// Segmenter splits a streaming reply into a thinking trace and an answer
type Segmenter struct {
	source    Source
	prompt    PromptBuilder
	retriever Retriever
	log       *logger.Logger
}

// NewSegmenter creates a Segmenter from cfg
func NewSegmenter(cfg Config) (*Segmenter, error) {
	if cfg.Source == nil {
		return nil, errors.New("segmenter requires a source")
	}
	if cfg.Prompt == nil {
		return nil, errors.New("segmenter requires a prompt builder")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.WithComponent("segmenter")
	}

	return &Segmenter{
		source:    cfg.Source,
		prompt:    cfg.Prompt,
		retriever: cfg.Retriever,
		log:       log,
	}, nil
}

// Segment runs one reply for userText and yields t after every change.
// Every yield hands out the same *chat.Transcript; callers that keep a
// snapshot must Clone it. Failures never escape: they end the sequence with
// a notice appended to t. Stopping the range early closes the upstream stream
// and leaves t well-formed.
func (s *Segmenter) Segment(ctx context.Context, userText string, t *chat.Transcript) iter.Seq[*chat.Transcript] {
	return func(yield func(*chat.Transcript) bool) {
		if strings.TrimSpace(userText) == "" {
			t.Append(chat.NewAssistantMessage(EmptyInputNotice))
			yield(t)
			return
		}

		fail := func(err error) {
			s.log.Error("Reply failed", "error", err)
			t.Append(chat.NewAssistantMessage(ErrorNotice(err)))
			yield(t)
		}

		history := chat.FormatHistory(t)

		prompt, err := s.buildPrompt(ctx, userText)
		if err != nil {
			fail(err)
			return
		}

		s.log.Debug("Opening stream", "history", len(history), "prompt_length", len(prompt))

		chunks, err := s.source.OpenStream(ctx, history, prompt)
		if err != nil {
			fail(err)
			return
		}
		defer func() {
			if err := chunks.Close(); err != nil {
				s.log.Warn("Failed to close stream", "error", err)
			}
		}()

		t.Append(chat.NewReasoningMessage(""))

		state := &turnState{}
		emit := func() bool { return yield(t) }

		for {
			chunk, err := chunks.Next(ctx)
			if errors.Is(err, io.EOF) {
				s.log.Debug("Stream complete",
					"chunks", state.chunks,
					"state", state.current(),
					"reasoning_length", state.reasoning.Len(),
					"answer_length", state.answer.Len())
				return
			}
			if err != nil {
				fail(err)
				return
			}

			if chunk.IsBoundary() && state.phaseDone {
				s.log.Warn("Ignoring extra phase boundary", "chunk", state.chunks+1)
			} else if len(chunk.Parts) == 0 || len(chunk.Parts) > 2 {
				s.log.Warn("Malformed chunk", "parts", len(chunk.Parts), "chunk", state.chunks+1)
			}

			if !state.apply(t, chunk, emit) {
				s.log.Debug("Consumer stopped early", "chunks", state.chunks, "state", state.current())
				return
			}
		}
	}
}

func (s *Segmenter) buildPrompt(ctx context.Context, userText string) (string, error) {
	var reference string
	if s.retriever != nil {
		found, err := s.retriever.Retrieve(ctx, userText)
		if err != nil {
			s.log.Warn("Reference lookup failed, continuing without it", "error", err)
		} else {
			reference = found
		}
	}

	prompt, err := s.prompt.Build(userText, reference)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return prompt, nil
}

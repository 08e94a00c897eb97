package stream

import (
	"strings"

	"github.com/killallgit/pharmai/pkg/chat"
)

// State is the segmenter's position in a reply
type State int

const (
	StateAwaitingFirstChunk State = iota
	StateReasoning
	StateAnswering
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateAwaitingFirstChunk:
		return "awaiting_first_chunk"
	case StateReasoning:
		return "reasoning"
	case StateAnswering:
		return "answering"
	default:
		return "unknown"
	}
}

// turnState holds the two growing buffers of one reply.
// Once phaseDone is set the reasoning buffer is frozen.
type turnState struct {
	reasoning strings.Builder
	answer    strings.Builder
	phaseDone bool
	chunks    int
}

func (s *turnState) current() State {
	switch {
	case s.phaseDone:
		return StateAnswering
	case s.chunks == 0:
		return StateAwaitingFirstChunk
	default:
		return StateReasoning
	}
}

// apply folds one chunk into the transcript. emit is called for every snapshot
// the chunk produces; apply stops early and returns false when emit does.
func (s *turnState) apply(t *chat.Transcript, chunk ResponseChunk, emit func() bool) bool {
	s.chunks++

	switch {
	case chunk.IsBoundary() && !s.phaseDone:
		s.reasoning.WriteString(chunk.Parts[0].Text)
		t.SetLastContent(s.reasoning.String())
		if !emit() {
			return false
		}

		s.answer.WriteString(chunk.Parts[1].Text)
		t.Append(chat.NewAssistantMessage(s.answer.String()))
		s.phaseDone = true

	case s.phaseDone:
		s.answer.WriteString(chunk.Head())
		t.SetLastContent(s.answer.String())

	default:
		s.reasoning.WriteString(chunk.Head())
		t.SetLastContent(s.reasoning.String())
	}

	return emit()
}

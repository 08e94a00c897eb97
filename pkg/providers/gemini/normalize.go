package gemini

import (
	"strings"

	"github.com/killallgit/pharmai/pkg/stream"
)

// normalizer maps candidate parts onto the one-or-two part chunk protocol.
//
// Current models flag thought parts; the first unflagged text produces the
// single two-part boundary chunk, with empty reasoning when the model did not
// think at all. The experimental thinking models put the thought and the first
// answer text in one event as two unflagged parts; with untagged set those
// pass through unchanged until a flagged part shows up.
type normalizer struct {
	untagged  bool
	answering bool
}

// usesUntaggedThoughts reports whether model streams thoughts without the thought flag
func usesUntaggedThoughts(model string) bool {
	return strings.Contains(model, "thinking-exp")
}

func (n *normalizer) normalize(parts []part) (stream.ResponseChunk, bool) {
	if n.untagged {
		for _, p := range parts {
			if p.Thought {
				n.untagged = false
				break
			}
		}
	}

	if n.untagged {
		if len(parts) == 0 {
			return stream.ResponseChunk{}, false
		}
		texts := make([]string, len(parts))
		for i, p := range parts {
			texts[i] = p.Text
		}
		return stream.TextChunk(texts...), true
	}

	var thought, answer strings.Builder
	hasAnswer := false
	for _, p := range parts {
		if p.Thought {
			thought.WriteString(p.Text)
			continue
		}
		hasAnswer = true
		answer.WriteString(p.Text)
	}

	switch {
	case n.answering:
		// Thoughts after the answer started have nowhere to go
		if answer.Len() == 0 {
			return stream.ResponseChunk{}, false
		}
		return stream.TextChunk(answer.String()), true
	case hasAnswer:
		n.answering = true
		return stream.TextChunk(thought.String(), answer.String()), true
	case thought.Len() > 0:
		return stream.TextChunk(thought.String()), true
	default:
		return stream.ResponseChunk{}, false
	}
}

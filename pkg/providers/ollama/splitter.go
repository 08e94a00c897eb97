package ollama

import (
	"strings"
	"unicode"

	"github.com/killallgit/pharmai/pkg/stream"
)

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

type splitPhase int

const (
	phaseDetect splitPhase = iota
	phaseThinking
	phaseAnswering
)

// thinkSplitter turns raw model text with an optional leading <think> block
// into chunks: reasoning pieces, one two-part boundary, then answer pieces.
// Text that could be the start of a tag is held back until it is decided.
type thinkSplitter struct {
	phase            splitPhase
	pending          string
	reasoningStarted bool
	answerStarted    bool
}

func (s *thinkSplitter) feed(text string) (stream.ResponseChunk, bool) {
	s.pending += text

	switch s.phase {
	case phaseDetect:
		trimmed := trimLeft(s.pending)
		if trimmed == "" || (len(trimmed) < len(openTag) && strings.HasPrefix(openTag, trimmed)) {
			return stream.ResponseChunk{}, false
		}
		if strings.HasPrefix(trimmed, openTag) {
			s.pending = trimmed[len(openTag):]
			s.phase = phaseThinking
			return s.feed("")
		}
		// No think block: everything is answer
		s.pending = ""
		s.phase = phaseAnswering
		s.answerStarted = true
		return stream.TextChunk("", trimmed), true

	case phaseThinking:
		if i := strings.Index(s.pending, closeTag); i >= 0 {
			reasoning := s.pending[:i]
			if !s.reasoningStarted {
				reasoning = trimLeft(reasoning)
			}
			answer := trimLeft(s.pending[i+len(closeTag):])
			s.pending = ""
			s.phase = phaseAnswering
			s.answerStarted = answer != ""
			return stream.TextChunk(reasoning, answer), true
		}

		keep := partialSuffix(s.pending, closeTag)
		text := s.pending[:len(s.pending)-keep]
		s.pending = s.pending[len(s.pending)-keep:]
		if !s.reasoningStarted {
			text = trimLeft(text)
		}
		if text == "" {
			return stream.ResponseChunk{}, false
		}
		s.reasoningStarted = true
		return stream.TextChunk(text), true

	default:
		text := s.pending
		s.pending = ""
		if !s.answerStarted {
			text = trimLeft(text)
		}
		if text == "" {
			return stream.ResponseChunk{}, false
		}
		s.answerStarted = true
		return stream.TextChunk(text), true
	}
}

// flush releases whatever was held back once the model has finished
func (s *thinkSplitter) flush() (stream.ResponseChunk, bool) {
	text := s.pending
	s.pending = ""

	switch s.phase {
	case phaseDetect:
		text = trimLeft(text)
		if text == "" {
			return stream.ResponseChunk{}, false
		}
		s.phase = phaseAnswering
		s.answerStarted = true
		return stream.TextChunk("", text), true
	case phaseThinking:
		if !s.reasoningStarted {
			text = trimLeft(text)
		}
		if text == "" {
			return stream.ResponseChunk{}, false
		}
		s.reasoningStarted = true
		return stream.TextChunk(text), true
	default:
		return stream.ResponseChunk{}, false
	}
}

// partialSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag
func partialSuffix(s, tag string) int {
	limit := len(tag) - 1
	if len(s) < limit {
		limit = len(s)
	}
	for n := limit; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

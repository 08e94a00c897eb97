package stream

import (
	"context"

	"github.com/killallgit/pharmai/pkg/chat"
)

// Part is one ordered text fragment of a response chunk
type Part struct {
	Text string `json:"text"`
}

// ResponseChunk is one increment of a streaming reply.
// One part continues the active phase. Two parts mark the phase switch:
// the first closes the reasoning, the second opens the answer.
type ResponseChunk struct {
	Parts []Part `json:"parts"`
}

// TextChunk builds a chunk from raw part texts
func TextChunk(texts ...string) ResponseChunk {
	parts := make([]Part, len(texts))
	for i, text := range texts {
		parts[i] = Part{Text: text}
	}
	return ResponseChunk{Parts: parts}
}

// IsBoundary reports whether the chunk carries the reasoning/answer switch
func (c ResponseChunk) IsBoundary() bool {
	return len(c.Parts) == 2
}

// Head returns the first part's text, or "" for an empty chunk
func (c ResponseChunk) Head() string {
	if len(c.Parts) == 0 {
		return ""
	}
	return c.Parts[0].Text
}

// Source opens streaming replies from an upstream model
type Source interface {
	// OpenStream sends prompt on top of history and returns the reply as a chunk stream
	OpenStream(ctx context.Context, history []chat.HistoryEntry, prompt string) (ChunkStream, error)
}

// ChunkStream is a pull-based reply. Next returns io.EOF once the reply is complete.
type ChunkStream interface {
	Next(ctx context.Context) (ResponseChunk, error)
	Close() error
}

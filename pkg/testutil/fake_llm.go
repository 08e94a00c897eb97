package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FakeLLM implements llms.Model by replaying canned stream pieces through
// the caller's streaming function
type FakeLLM struct {
	mu           sync.Mutex
	pieces       []string
	callCount    int
	lastMessages []llms.MessageContent
	errorAfter   int // If >= 0, fail after this many pieces
	errorMessage string
	hang         bool
}

// NewFakeLLM creates a new fake LLM that streams the given pieces in order
func NewFakeLLM(pieces ...string) *FakeLLM {
	return &FakeLLM{
		pieces:     pieces,
		errorAfter: -1,
	}
}

// SetErrorAfter makes generation fail once n pieces have been streamed
func (f *FakeLLM) SetErrorAfter(n int, errorMessage string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorAfter = n
	f.errorMessage = errorMessage
}

// SetHang makes generation block after the pieces until the context ends
func (f *FakeLLM) SetHang(hang bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hang = hang
}

// GenerateContent implements llms.Model
func (f *FakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	f.callCount++
	f.lastMessages = messages
	pieces := append([]string(nil), f.pieces...)
	errorAfter, errorMessage, hang := f.errorAfter, f.errorMessage, f.hang
	f.mu.Unlock()

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	var content strings.Builder
	for i, piece := range pieces {
		if i == errorAfter {
			return nil, fmt.Errorf("%s", errorMessage)
		}
		content.WriteString(piece)
		if opts.StreamingFunc != nil {
			if err := opts.StreamingFunc(ctx, []byte(piece)); err != nil {
				return nil, err
			}
		}
	}
	if errorAfter >= len(pieces) {
		return nil, fmt.Errorf("%s", errorMessage)
	}

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content: content.String(),
			},
		},
	}, nil
}

// Call implements llms.Model for single-prompt generation
func (f *FakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

// GetCallCount returns the number of times GenerateContent was invoked
func (f *FakeLLM) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// GetLastMessages returns the messages of the most recent generation
func (f *FakeLLM) GetLastMessages() []llms.MessageContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMessages
}

// ThinkingResponses holds stream pieces in the shape reasoning models produce
var ThinkingResponses = struct {
	Tagged   []string
	Untagged []string
}{
	Tagged: []string{
		"<thi", "nk>\nConsider ", "NSAIDs.\n</th", "ink>\n\n", "Ibuprofen", " is an NSAID.",
	},
	Untagged: []string{
		"Ibuprofen", " is an NSAID.",
	},
}

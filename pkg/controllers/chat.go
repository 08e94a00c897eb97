package controllers

import (
	"context"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/stream"
	"github.com/killallgit/pharmai/pkg/tokens"
)

// ChatController owns one conversation and drives turns against it.
// Turns are serialized: a second Submit waits until the first one's range ends.
// ID, Reset and Transcript also wait for a running turn, so call them from
// outside the range loop.
type ChatController struct {
	id         string
	segmenter  *stream.Segmenter
	transcript *chat.Transcript
	counter    *tokens.Counter
	usage      tokens.Usage
	mu         sync.Mutex
	log        *logger.Logger
}

// Option configures a ChatController
type Option func(*ChatController)

// WithTokenCounter makes the controller count the tokens of every finished turn
func WithTokenCounter(counter *tokens.Counter) Option {
	return func(cc *ChatController) {
		cc.counter = counter
	}
}

func NewChatController(segmenter *stream.Segmenter, opts ...Option) *ChatController {
	cc := &ChatController{
		id:         uuid.NewString(),
		segmenter:  segmenter,
		transcript: chat.NewTranscript(),
		log:        logger.WithComponent("chat_controller"),
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

func (cc *ChatController) ID() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.id
}

// Submit appends the user's message and yields the transcript after every
// change to the reply. The yielded transcript is live; Clone it to keep it.
func (cc *ChatController) Submit(ctx context.Context, userText string) iter.Seq[*chat.Transcript] {
	return func(yield func(*chat.Transcript) bool) {
		cc.mu.Lock()
		defer cc.mu.Unlock()

		cc.log.Info("Turn started", "conversation", cc.id, "messages", cc.transcript.Len())

		cc.transcript.Append(chat.NewUserMessage(userText))
		turnStart := cc.transcript.Len()

		snapshots := 0
		for snapshot := range cc.segmenter.Segment(ctx, userText, cc.transcript) {
			snapshots++
			if !yield(snapshot) {
				cc.log.Debug("Turn abandoned", "conversation", cc.id, "snapshots", snapshots)
				return
			}
		}

		if cc.counter == nil {
			cc.log.Info("Turn finished", "conversation", cc.id, "snapshots", snapshots)
			return
		}
		cc.usage = cc.countTurn(turnStart)
		cc.log.Info("Turn finished", "conversation", cc.id, "snapshots", snapshots,
			"tokens_sent", cc.usage.Sent, "tokens_received", cc.usage.Received)
	}
}

// countTurn measures the conversation sent upstream and the reply that came back.
// Reasoning counts as received even though it never goes upstream again.
func (cc *ChatController) countTurn(turnStart int) tokens.Usage {
	sent := &chat.Transcript{Messages: cc.transcript.Messages[:turnStart]}
	usage := tokens.Usage{Sent: cc.counter.CountHistory(chat.FormatHistory(sent))}
	for _, msg := range cc.transcript.Messages[turnStart:] {
		usage.Received += cc.counter.Count(msg.Content)
	}
	return usage
}

// LastUsage returns the token usage of the most recent finished turn.
// It is zero when no token counter is configured.
func (cc *ChatController) LastUsage() tokens.Usage {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.usage
}

// Reset clears the conversation and returns the new empty transcript
func (cc *ChatController) Reset() *chat.Transcript {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.transcript = chat.NewTranscript()
	cc.usage = tokens.Usage{}
	cc.id = uuid.NewString()
	cc.log.Info("Conversation reset", "conversation", cc.id)
	return cc.transcript
}

// Transcript returns a copy of the conversation so far
func (cc *ChatController) Transcript() *chat.Transcript {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.transcript.Clone()
}

func (cc *ChatController) GetMessageCount() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.transcript.Len()
}

package headless

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/stream"
)

// ErrTurnFailed is returned when the reply ended in an error notice
var ErrTurnFailed = errors.New("reply failed")

// Controller runs a turn and yields transcript snapshots
type Controller interface {
	Submit(ctx context.Context, userText string) iter.Seq[*chat.Transcript]
}

// Renderer shows transcript snapshots
type Renderer interface {
	Render(t *chat.Transcript) error
	Finish() error
}

// RunHeadless executes a single prompt and renders the reply as it streams
func RunHeadless(ctx context.Context, controller Controller, renderer Renderer, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	logger.Debug("Headless prompt: %s", prompt)

	var last *chat.Transcript
	for snapshot := range controller.Submit(ctx, prompt) {
		last = snapshot
		if err := renderer.Render(snapshot); err != nil {
			return fmt.Errorf("failed to render reply: %w", err)
		}
	}

	if err := renderer.Finish(); err != nil {
		return fmt.Errorf("failed to render reply: %w", err)
	}

	if last != nil {
		if msg, ok := last.Last(); ok && !msg.IsReasoning() && stream.IsErrorNotice(msg.Content) {
			return fmt.Errorf("%w: %s", ErrTurnFailed, msg.Content)
		}
	}

	logger.Debug("Headless reply complete")
	return nil
}

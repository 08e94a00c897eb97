package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/killallgit/pharmai/pkg/controllers"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/prompt"
	"github.com/killallgit/pharmai/pkg/render"
	"github.com/peterh/liner"
)

const promptText = "pharmai> "

// Session is an interactive conversation on the terminal
type Session struct {
	controller *controllers.ChatController
	renderer   *render.Renderer
	input      Input
	out        io.Writer
	log        *logger.Logger
}

// NewSession creates a Session reading from input and rendering to out
func NewSession(controller *controllers.ChatController, renderer *render.Renderer, input Input, out io.Writer) *Session {
	return &Session{
		controller: controller,
		renderer:   renderer,
		input:      input,
		out:        out,
		log:        logger.WithComponent("repl"),
	}
}

// Run reads lines until the user quits, input ends or ctx is done
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Ask a pharmacology question. Commands: /examples, /example <n>, /reset, /quit")

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.input.ReadLine(promptText)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "/") {
			question, quit := s.command(trimmed)
			if quit {
				return nil
			}
			if question == "" {
				continue
			}
			line = question
		}

		if err := s.turn(ctx, line); err != nil {
			return err
		}
	}
}

// command handles a slash command. It returns a question to submit, if any,
// and whether the session should end.
func (s *Session) command(input string) (string, bool) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return "", true
	case "/reset":
		s.controller.Reset()
		s.renderer.Reset()
		fmt.Fprintln(s.out, "Conversation cleared.")
	case "/examples":
		for i, example := range prompt.Examples {
			fmt.Fprintf(s.out, "%d. %s\n", i+1, example)
		}
	case "/example":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "Usage: /example <n>")
			return "", false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(prompt.Examples) {
			fmt.Fprintf(s.out, "Pick an example between 1 and %d.\n", len(prompt.Examples))
			return "", false
		}
		fmt.Fprintln(s.out, prompt.Examples[n-1])
		return prompt.Examples[n-1], false
	default:
		fmt.Fprintf(s.out, "Unknown command %s\n", fields[0])
	}
	return "", false
}

func (s *Session) turn(ctx context.Context, question string) error {
	for snapshot := range s.controller.Submit(ctx, question) {
		if err := s.renderer.Render(snapshot); err != nil {
			return fmt.Errorf("failed to render reply: %w", err)
		}
	}
	if err := s.renderer.Finish(); err != nil {
		return fmt.Errorf("failed to render reply: %w", err)
	}

	s.log.Debug("Turn rendered", "conversation", s.controller.ID(), "messages", s.controller.GetMessageCount())
	return nil
}

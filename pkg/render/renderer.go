package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/stream"
)

const (
	thinkingLabel = "Thinking"
	answerLabel   = "PharmAI"
)

// Renderer prints a growing transcript to a terminal. Each call to Render
// writes only what was appended since the previous call, so it can be fed
// every snapshot of a streaming turn. User messages are not echoed.
type Renderer struct {
	out          io.Writer
	styles       Styles
	showThinking bool

	printed     []int
	headed      []bool
	wrote       bool
	atLineStart bool
}

// New creates a Renderer writing to out
func New(out io.Writer, showThinking bool) *Renderer {
	return &Renderer{
		out:          out,
		styles:       DefaultStyles(out),
		showThinking: showThinking,
		atLineStart:  true,
	}
}

// Render writes the part of t not yet shown
func (r *Renderer) Render(t *chat.Transcript) error {
	if t.Len() < len(r.printed) {
		r.Reset()
	}

	for i, m := range t.Messages {
		if i == len(r.printed) {
			r.printed = append(r.printed, 0)
			r.headed = append(r.headed, false)
		}

		if !r.visible(m) {
			r.printed[i] = len(m.Content)
			continue
		}

		// A message gets its header with its first visible text
		if !r.headed[i] {
			if m.IsEmpty() {
				continue
			}
			if err := r.header(m); err != nil {
				return err
			}
			r.headed[i] = true
		}

		if len(m.Content) <= r.printed[i] {
			r.printed[i] = len(m.Content)
			continue
		}
		delta := m.Content[r.printed[i]:]
		r.printed[i] = len(m.Content)

		if err := r.write(paint(r.styleFor(m), delta)); err != nil {
			return err
		}
		r.atLineStart = strings.HasSuffix(delta, "\n")
	}

	return nil
}

// Finish ends the current turn's output on a fresh line
func (r *Renderer) Finish() error {
	if r.wrote && !r.atLineStart {
		r.atLineStart = true
		return r.write("\n")
	}
	return nil
}

// Reset forgets everything printed so a new conversation starts cleanly
func (r *Renderer) Reset() {
	r.printed = nil
	r.headed = nil
	r.wrote = false
	r.atLineStart = true
}

func (r *Renderer) header(m chat.Message) error {
	var b strings.Builder
	if r.wrote {
		if !r.atLineStart {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.IsReasoning() {
		b.WriteString(r.styles.ThinkingLabel.Render(thinkingLabel))
	} else {
		b.WriteString(r.styles.AnswerLabel.Render(answerLabel))
	}
	b.WriteString("\n")

	r.wrote = true
	r.atLineStart = true
	return r.write(b.String())
}

func (r *Renderer) visible(m chat.Message) bool {
	switch {
	case m.IsUser():
		return false
	case m.IsReasoning():
		return r.showThinking
	default:
		return true
	}
}

func (r *Renderer) styleFor(m chat.Message) lipgloss.Style {
	switch {
	case m.IsReasoning():
		return r.styles.Reasoning
	case stream.IsErrorNotice(m.Content):
		return r.styles.Error
	default:
		return r.styles.Answer
	}
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.out, s)
	return err
}

// paint styles each line separately so lipgloss never pads a block
func paint(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

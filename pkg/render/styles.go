package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Warm earth-tone palette
var (
	ColorMuted  = lipgloss.Color("#83715f")
	ColorLabel  = lipgloss.Color("#eb8755")
	ColorAnswer = lipgloss.Color("#d3b597")
	ColorError  = lipgloss.Color("#d95f5f")
)

// Styles defines the lipgloss styles used for each kind of output
type Styles struct {
	ThinkingLabel lipgloss.Style
	AnswerLabel   lipgloss.Style
	Reasoning     lipgloss.Style
	Answer        lipgloss.Style
	Error         lipgloss.Style
}

// DefaultStyles returns styles bound to the color profile of w
func DefaultStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)

	return Styles{
		ThinkingLabel: base.Foreground(ColorMuted).Bold(true),
		AnswerLabel:   base.Foreground(ColorLabel).Bold(true),
		Reasoning:     base.Foreground(ColorMuted).Faint(true).Italic(true),
		Answer:        base.Foreground(ColorAnswer),
		Error:         base.Foreground(ColorError),
	}
}

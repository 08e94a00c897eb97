package prompt

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

const questionTemplate = `{{.persona}}

{{if .reference}}Relevant information:
{{.reference}}

{{end}}User question: {{.question}}`

// Options configures a Builder
type Options struct {
	Language     string
	SystemPrompt string // Replaces the built-in persona when set
}

// Builder renders the outbound prompt for a question.
// It wraps langchaingo's PromptTemplate with the persona bound as a partial.
type Builder struct {
	template prompts.PromptTemplate
	persona  string
}

// NewBuilder creates a Builder from opts
func NewBuilder(opts Options) (*Builder, error) {
	persona := opts.SystemPrompt
	if persona == "" {
		persona = Persona(opts.Language)
	}

	pt := prompts.NewPromptTemplate(questionTemplate, []string{"question", "reference"})
	pt.PartialVariables = map[string]any{"persona": persona}

	b := &Builder{template: pt, persona: persona}

	// Fail at construction rather than on the first question
	if _, err := b.Build("probe", ""); err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}

	return b, nil
}

// Persona returns the instruction block sent ahead of every question
func (b *Builder) Persona() string {
	return b.persona
}

// Build renders the prompt. reference may be empty.
func (b *Builder) Build(question, reference string) (string, error) {
	return b.template.Format(map[string]any{
		"question":  question,
		"reference": reference,
	})
}

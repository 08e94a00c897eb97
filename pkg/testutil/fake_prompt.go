package testutil

import (
	"context"
	"fmt"
)

// EchoPrompt implements stream.PromptBuilder by echoing its inputs
type EchoPrompt struct {
	Err error
}

// Build implements stream.PromptBuilder
func (p EchoPrompt) Build(question, reference string) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	if reference == "" {
		return fmt.Sprintf("Q:%s", question), nil
	}
	return fmt.Sprintf("R:%s|Q:%s", reference, question), nil
}

// StaticRetriever implements stream.Retriever with a fixed answer
type StaticRetriever struct {
	Reference string
	Err       error
	Calls     int
}

// Retrieve implements stream.Retriever
func (r *StaticRetriever) Retrieve(_ context.Context, question string) (string, error) {
	r.Calls++
	return r.Reference, r.Err
}

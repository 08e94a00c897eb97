// Package prompt builds the outbound prompt for each question, built on top
// of LangChain-Go's prompt templates.
//
// The prompt is the persona instruction block, optional reference material
// found for the question, and the question itself:
//
//	builder, _ := prompt.NewBuilder(prompt.Options{Language: "English"})
//	text, err := builder.Build("What is ibuprofen?", "")
//
// A custom persona replaces the built-in pharmacology one entirely:
//
//	builder, _ := prompt.NewBuilder(prompt.Options{SystemPrompt: "You are a terse assistant."})
package prompt

package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestFakeLLM(t *testing.T) {
	ctx := context.Background()

	t.Run("should stream pieces in order", func(t *testing.T) {
		llm := NewFakeLLM("one", "two", "three")

		var streamed []string
		resp, err := llm.GenerateContent(ctx, nil, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			streamed = append(streamed, string(chunk))
			return nil
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, streamed)
		assert.Equal(t, "onetwothree", resp.Choices[0].Content)
		assert.Equal(t, 1, llm.GetCallCount())
	})

	t.Run("should record messages", func(t *testing.T) {
		llm := NewFakeLLM("ok")
		messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "hi")}

		_, err := llm.GenerateContent(ctx, messages)
		require.NoError(t, err)
		assert.Equal(t, messages, llm.GetLastMessages())
	})

	t.Run("should fail after configured pieces", func(t *testing.T) {
		llm := NewFakeLLM("one", "two", "three")
		llm.SetErrorAfter(2, "simulated error")

		var streamed []string
		_, err := llm.GenerateContent(ctx, nil, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			streamed = append(streamed, string(chunk))
			return nil
		}))
		require.Error(t, err)
		assert.Equal(t, "simulated error", err.Error())
		assert.Equal(t, []string{"one", "two"}, streamed)
	})

	t.Run("should stop when the streaming func fails", func(t *testing.T) {
		llm := NewFakeLLM("one", "two")
		_, err := llm.GenerateContent(ctx, nil, llms.WithStreamingFunc(func(_ context.Context, _ []byte) error {
			return context.Canceled
		}))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("should hang until cancelled", func(t *testing.T) {
		llm := NewFakeLLM("one")
		llm.SetHang(true)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := llm.GenerateContent(cctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("call returns the full content", func(t *testing.T) {
		llm := NewFakeLLM("a", "b")
		out, err := llm.Call(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ab", out)
	})
}

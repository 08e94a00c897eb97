package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/killallgit/pharmai/pkg/config"
	"github.com/killallgit/pharmai/pkg/prompt"
	"github.com/killallgit/pharmai/pkg/providers/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaConfig() *config.Config {
	return &config.Config{
		Provider: "ollama",
		Ollama: config.OllamaConfig{
			URL:     "http://localhost:11434",
			Model:   "qwen3",
			Timeout: time.Second,
		},
		Persona: config.PersonaConfig{Language: "English"},
	}
}

// TestRootCommandFlags tests that all expected CLI flags are present
func TestRootCommandFlags(t *testing.T) {
	for name, typ := range map[string]string{
		"config":        "string",
		"log-level":     "string",
		"provider":      "string",
		"show-thinking": "bool",
	} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, typ, flag.Value.Type(), name)
	}

	promptFlag := rootCmd.Flags().Lookup("prompt")
	require.NotNil(t, promptFlag)
	assert.Equal(t, "p", promptFlag.Shorthand)

	addrFlag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Equal(t, ":8080", addrFlag.DefValue)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["examples"])
}

func TestExamplesCommand(t *testing.T) {
	var out bytes.Buffer
	examplesCmd.SetOut(&out)
	defer examplesCmd.SetOut(nil)

	examplesCmd.Run(examplesCmd, nil)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, len(prompt.Examples))
	assert.Equal(t, "1. "+prompt.Examples[0], lines[0])
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("ollama", func(t *testing.T) {
		a, err := newApp(ctx, ollamaConfig())
		require.NoError(t, err)
		assert.IsType(t, &ollama.Source{}, a.source)

		first, second := a.newController(), a.newController()
		assert.NotEqual(t, first.ID(), second.ID())
	})

	t.Run("gemini without key", func(t *testing.T) {
		_, err := newApp(ctx, &config.Config{Provider: "gemini"})
		assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	})

	t.Run("missing reference corpus", func(t *testing.T) {
		cfg := ollamaConfig()
		cfg.Knowledge = config.KnowledgeConfig{
			Enabled: true,
			Path:    filepath.Join(t.TempDir(), "missing.jsonl"),
			Results: 3,
		}
		_, err := newApp(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load reference corpus")
	})
}

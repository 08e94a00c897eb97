package cmd

import (
	"context"
	"fmt"

	"github.com/killallgit/pharmai/pkg/config"
	"github.com/killallgit/pharmai/pkg/controllers"
	"github.com/killallgit/pharmai/pkg/knowledge"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/prompt"
	"github.com/killallgit/pharmai/pkg/providers"
	"github.com/killallgit/pharmai/pkg/stream"
	"github.com/killallgit/pharmai/pkg/tokens"
)

// app holds the pieces shared by every conversation
type app struct {
	source    stream.Source
	segmenter *stream.Segmenter
	counter   *tokens.Counter
}

// newApp wires the provider, prompt and optional reference lookup from cfg
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.WithComponent("app")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := providers.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	builder, err := prompt.NewBuilder(prompt.Options{
		Language:     cfg.Persona.Language,
		SystemPrompt: cfg.Persona.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt builder: %w", err)
	}

	segCfg := stream.Config{
		Source: source,
		Prompt: builder,
	}

	if cfg.Knowledge.Enabled {
		store, err := knowledge.Open(ctx, cfg.Knowledge)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference corpus: %w", err)
		}
		segCfg.Retriever = store
	}

	segmenter, err := stream.NewSegmenter(segCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create segmenter: %w", err)
	}

	log.Info("Application ready",
		"provider", cfg.Provider,
		"model", cfg.GetActiveProviderModel(),
		"knowledge", cfg.Knowledge.Enabled,
		"config_file", config.GetConfigFileUsed())

	a := &app{
		source:    source,
		segmenter: segmenter,
	}
	if cfg.TrackTokens {
		a.counter = tokens.NewCounter(cfg.GetActiveProviderModel())
	}
	return a, nil
}

func (a *app) newController() *controllers.ChatController {
	if a.counter == nil {
		return controllers.NewChatController(a.segmenter)
	}
	return controllers.NewChatController(a.segmenter, controllers.WithTokenCounter(a.counter))
}

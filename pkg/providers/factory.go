package providers

import (
	"errors"
	"fmt"

	"github.com/killallgit/pharmai/pkg/config"
	"github.com/killallgit/pharmai/pkg/providers/gemini"
	"github.com/killallgit/pharmai/pkg/providers/ollama"
	"github.com/killallgit/pharmai/pkg/stream"
)

// ErrUnknownProvider is returned for a provider name with no implementation
var ErrUnknownProvider = errors.New("unknown provider")

// New builds the stream source selected by cfg.Provider
func New(cfg *config.Config) (stream.Source, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider: %w", config.ErrMissingAPIKey)
		}
		return gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout), nil
	case "ollama":
		src, err := ollama.New(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Ollama.Timeout)
		if err != nil {
			return nil, fmt.Errorf("ollama provider: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

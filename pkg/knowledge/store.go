package knowledge

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/killallgit/pharmai/pkg/config"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

const collectionName = "pharmacology"

// Store answers similarity lookups over an in-memory reference corpus
type Store struct {
	collection *chromem.Collection
	results    int
	log        *logger.Logger
}

// Open loads the corpus named in cfg and embeds it with the configured Ollama model
func Open(ctx context.Context, cfg config.KnowledgeConfig) (*Store, error) {
	entries, err := LoadCorpus(cfg.Path)
	if err != nil {
		return nil, err
	}

	embed, err := NewOllamaEmbeddingFunc(cfg.EmbeddingModel, cfg.EmbeddingURL)
	if err != nil {
		return nil, err
	}

	return NewStore(ctx, entries, embed, cfg.Results)
}

// NewOllamaEmbeddingFunc embeds text through langchaingo's Ollama client
func NewOllamaEmbeddingFunc(model, baseURL string) (chromem.EmbeddingFunc, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama LLM: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return embedder.EmbedQuery, nil
}

// NewStore indexes entries using embed
func NewStore(ctx context.Context, entries []Entry, embed chromem.EmbeddingFunc, results int) (*Store, error) {
	if results <= 0 {
		results = 1
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(entries))
	for i, entry := range entries {
		docs[i] = chromem.Document{
			ID:       entry.ID,
			Content:  entry.Content,
			Metadata: map[string]string{"title": entry.Title},
		}
	}

	if len(docs) > 0 {
		if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("failed to add documents: %w", err)
		}
	}

	log := logger.WithComponent("knowledge")
	log.Info("Reference corpus indexed", "documents", col.Count(), "results", results)

	return &Store{
		collection: col,
		results:    results,
		log:        log,
	}, nil
}

// Count returns the number of indexed entries
func (s *Store) Count() int {
	return s.collection.Count()
}

// Retrieve returns the closest entries to question formatted as prompt
// reference material, or "" for an empty corpus
func (s *Store) Retrieve(ctx context.Context, question string) (string, error) {
	k := s.results
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return "", nil
	}

	results, err := s.collection.Query(ctx, question, k, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to query collection: %w", err)
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if title := r.Metadata["title"]; title != "" {
			b.WriteString(title)
			b.WriteString(": ")
		}
		b.WriteString(r.Content)
	}

	s.log.Debug("Reference lookup", "results", len(results))
	return b.String(), nil
}

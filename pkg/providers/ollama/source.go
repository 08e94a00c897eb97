package ollama

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/stream"
	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

// Source streams replies from a local Ollama server through langchaingo
type Source struct {
	llm        llms.Model
	baseURL    string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates an Ollama-backed source. timeout bounds the wait for response
// headers; a streaming reply runs until it ends or its context is done.
func New(baseURL, model string, timeout time.Duration) (*Source, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	httpClient := &http.Client{Transport: transport}

	opts := []lcollama.Option{
		lcollama.WithHTTPClient(httpClient),
	}
	if baseURL != "" {
		opts = append(opts, lcollama.WithServerURL(baseURL))
	}
	if model != "" {
		opts = append(opts, lcollama.WithModel(model))
	}

	llm, err := lcollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama LLM: %w", err)
	}

	s := NewWithModel(llm, model)
	s.baseURL = strings.TrimRight(baseURL, "/")
	s.httpClient = httpClient
	return s, nil
}

// NewWithModel wraps an existing langchaingo model
func NewWithModel(llm llms.Model, model string) *Source {
	return &Source{
		llm:        llm,
		model:      model,
		httpClient: http.DefaultClient,
		log:        logger.WithComponent("ollama"),
	}
}

// OpenStream implements stream.Source. Generation runs in the background and
// hands text to the returned stream as it arrives; Close stops it.
func (s *Source) OpenStream(ctx context.Context, history []chat.HistoryEntry, prompt string) (stream.ChunkStream, error) {
	messages := buildMessages(history, prompt)

	genCtx, cancel := context.WithCancel(ctx)
	texts := make(chan string)
	errc := make(chan error, 1)

	streamID := uuid.NewString()
	s.log.Debug("Opening stream", "stream", streamID, "model", s.model, "history", len(history))

	go func() {
		defer close(texts)

		streamingFunc := func(ctx context.Context, chunk []byte) error {
			select {
			case texts <- string(chunk):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		_, err := s.llm.GenerateContent(genCtx, messages, llms.WithStreamingFunc(streamingFunc))
		errc <- err
	}()

	return &chunkStream{
		id:     streamID,
		texts:  texts,
		errc:   errc,
		cancel: cancel,
		log:    s.log,
	}, nil
}

func buildMessages(history []chat.HistoryEntry, prompt string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	for _, entry := range history {
		messageType := llms.ChatMessageTypeHuman
		if entry.Role == string(chat.RoleAssistant) {
			messageType = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(messageType, entry.Content))
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
}

type chunkStream struct {
	id       string
	texts    <-chan string
	errc     <-chan error
	cancel   context.CancelFunc
	splitter thinkSplitter
	finished bool
	pieces   int
	log      *logger.Logger
}

func (cs *chunkStream) Next(ctx context.Context) (stream.ResponseChunk, error) {
	for {
		if cs.finished {
			return stream.ResponseChunk{}, io.EOF
		}

		select {
		case <-ctx.Done():
			return stream.ResponseChunk{}, ctx.Err()
		case text, ok := <-cs.texts:
			if !ok {
				cs.finished = true
				if err := <-cs.errc; err != nil {
					return stream.ResponseChunk{}, fmt.Errorf("generation failed: %w", err)
				}
				cs.log.Debug("Stream ended", "stream", cs.id, "pieces", cs.pieces)
				if chunk, ok := cs.splitter.flush(); ok {
					return chunk, nil
				}
				return stream.ResponseChunk{}, io.EOF
			}
			cs.pieces++
			if chunk, ok := cs.splitter.feed(text); ok {
				return chunk, nil
			}
		}
	}
}

func (cs *chunkStream) Close() error {
	cs.cancel()
	return nil
}

var _ stream.Source = (*Source)(nil)

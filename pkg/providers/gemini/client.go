package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/killallgit/pharmai/pkg/stream"
)

const maxEventSize = 1024 * 1024

// Client streams replies from the Gemini generateContent API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	untagged   bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Gemini client. timeout bounds the wait for the
// response headers; the streamed body runs until it ends or ctx is done.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		untagged:   usesUntaggedThoughts(model),
		httpClient: &http.Client{Transport: transport},
		log:        logger.WithComponent("gemini"),
	}
}

// OpenStream implements stream.Source
func (c *Client) OpenStream(ctx context.Context, history []chat.HistoryEntry, prompt string) (stream.ChunkStream, error) {
	req := generateRequest{
		Contents: buildContents(history, prompt),
		GenerationConfig: &generationConfig{
			ThinkingConfig: &thinkingConfig{IncludeThoughts: true},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	streamID := uuid.NewString()
	c.log.Debug("Opening stream", "stream", streamID, "model", c.model, "history", len(history))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	return &chunkStream{
		id:         streamID,
		body:       resp.Body,
		scanner:    scanner,
		normalizer: normalizer{untagged: c.untagged},
		log:        c.log,
	}, nil
}

func buildContents(history []chat.HistoryEntry, prompt string) []content {
	contents := make([]content, 0, len(history)+1)
	for _, entry := range history {
		role := "user"
		if entry.Role == string(chat.RoleAssistant) {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: entry.Content}}})
	}
	return append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})
}

func statusError(resp *http.Response) error {
	errorBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request failed with status %d (failed to read error response: %w)", resp.StatusCode, err)
	}

	var errorResp struct {
		Error apiError `json:"error"`
	}
	if json.Unmarshal(errorBody, &errorResp) == nil && errorResp.Error.Message != "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errorResp.Error.Message)
	}

	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(errorBody)))
}

// chunkStream reads server-sent events one at a time as the caller pulls
type chunkStream struct {
	id         string
	body       io.ReadCloser
	scanner    *bufio.Scanner
	normalizer normalizer
	events     int
	log        *logger.Logger
}

func (s *chunkStream) Next(ctx context.Context) (stream.ResponseChunk, error) {
	for {
		if err := ctx.Err(); err != nil {
			return stream.ResponseChunk{}, err
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return stream.ResponseChunk{}, fmt.Errorf("stream reading error: %w", err)
			}
			s.log.Debug("Stream ended", "stream", s.id, "events", s.events)
			return stream.ResponseChunk{}, io.EOF
		}

		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return stream.ResponseChunk{}, fmt.Errorf("failed to parse SSE data: %w", err)
		}
		s.events++

		if event.Error != nil {
			return stream.ResponseChunk{}, fmt.Errorf("upstream error %d (%s): %s", event.Error.Code, event.Error.Status, event.Error.Message)
		}
		if event.PromptFeedback != nil && event.PromptFeedback.BlockReason != "" {
			return stream.ResponseChunk{}, fmt.Errorf("prompt blocked: %s", event.PromptFeedback.BlockReason)
		}
		if len(event.Candidates) == 0 {
			continue
		}

		if chunk, ok := s.normalizer.normalize(event.Candidates[0].Content.Parts); ok {
			return chunk, nil
		}
	}
}

func (s *chunkStream) Close() error {
	return s.body.Close()
}

package tokens

import (
	"strings"
	"sync"

	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/logger"
	"github.com/pkoukk/tiktoken-go"
)

// Usage is the token cost of one turn
type Usage struct {
	Sent     int `json:"sent"`
	Received int `json:"received"`
}

// Total returns sent plus received tokens
func (u Usage) Total() int {
	return u.Sent + u.Received
}

// Counter counts tokens in conversation text. Without a tokenizer it
// falls back to a rough estimate.
type Counter struct {
	encoder *tiktoken.Tiktoken
	mu      sync.Mutex
}

// NewCounter creates a counter for the given model
func NewCounter(modelName string) *Counter {
	encoder, err := tiktoken.GetEncoding(encodingForModel(modelName))
	if err != nil {
		logger.WithComponent("tokens").Warn("Tokenizer unavailable, estimating token counts", "model", modelName, "error", err)
		return &Counter{}
	}
	return &Counter{encoder: encoder}
}

// Count returns the number of tokens in text
func (c *Counter) Count(text string) int {
	if c.encoder == nil {
		return estimateTokens(text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoder.Encode(text, nil, nil))
}

// CountHistory counts a conversation as sent upstream, including the
// per-message framing most chat models add
func (c *Counter) CountHistory(entries []chat.HistoryEntry) int {
	if len(entries) == 0 {
		return 0
	}

	total := 0
	for _, entry := range entries {
		total += c.Count(entry.Role) + c.Count(entry.Content) + 4
	}
	return total + 3 // reply priming
}

// encodingForModel returns the tiktoken encoding closest to the model's tokenizer
func encodingForModel(modelName string) string {
	modelLower := strings.ToLower(modelName)

	if strings.Contains(modelLower, "code") {
		return "p50k_base"
	}

	// Works reasonably for gemini, qwen and llama families
	return "cl100k_base"
}

// estimateTokens approximates one token per word or per four characters, whichever is higher
func estimateTokens(text string) int {
	wordEstimate := len(strings.Fields(text))
	charEstimate := len(text) / 4

	if wordEstimate > charEstimate {
		return wordEstimate
	}
	return charEstimate
}

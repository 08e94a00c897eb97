package knowledge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Entry is one reference document in the corpus
type Entry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LoadCorpus reads a JSON-lines corpus file
func LoadCorpus(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	return ReadCorpus(f)
}

// ReadCorpus parses one JSON object per line. Blank lines are skipped and
// entries without an id get one from their line number.
func ReadCorpus(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		if strings.TrimSpace(entry.Content) == "" {
			return nil, fmt.Errorf("corpus line %d: content is empty", line)
		}
		if entry.ID == "" {
			entry.ID = strconv.Itoa(line)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	return entries, nil
}

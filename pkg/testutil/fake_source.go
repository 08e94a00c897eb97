package testutil

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/stream"
)

// FakeSource implements stream.Source with scripted chunks for testing
type FakeSource struct {
	mu          sync.Mutex
	chunks      []stream.ResponseChunk
	openErr     error
	failAfter   int // Fail after N chunks (-1 = no failure)
	failErr     error
	openCount   int
	reads       int
	closed      bool
	lastHistory []chat.HistoryEntry
	lastPrompt  string
}

// NewFakeSource creates a source that replays chunks on every OpenStream
func NewFakeSource(chunks ...stream.ResponseChunk) *FakeSource {
	return &FakeSource{
		chunks:    chunks,
		failAfter: -1,
	}
}

// SetOpenError makes OpenStream fail with err
func (f *FakeSource) SetOpenError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr = err
}

// SetFailAfter makes the stream fail with err once n chunks were delivered
func (f *FakeSource) SetFailAfter(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = n
	f.failErr = err
}

// OpenStream implements stream.Source
func (f *FakeSource) OpenStream(ctx context.Context, history []chat.HistoryEntry, prompt string) (stream.ChunkStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.openCount++
	f.lastHistory = append([]chat.HistoryEntry(nil), history...)
	f.lastPrompt = prompt
	f.closed = false

	if f.openErr != nil {
		return nil, f.openErr
	}

	return &fakeChunkStream{source: f}, nil
}

// OpenCount returns how many times OpenStream was called
func (f *FakeSource) OpenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openCount
}

// Reads returns how many times Next was called across all streams
func (f *FakeSource) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Closed reports whether the last opened stream was closed
func (f *FakeSource) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// LastHistory returns the history passed to the last OpenStream
func (f *FakeSource) LastHistory() []chat.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHistory
}

// LastPrompt returns the prompt passed to the last OpenStream
func (f *FakeSource) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt
}

type fakeChunkStream struct {
	source *FakeSource
	index  int
}

func (s *fakeChunkStream) Next(ctx context.Context) (stream.ResponseChunk, error) {
	f := s.source
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++

	if err := ctx.Err(); err != nil {
		return stream.ResponseChunk{}, err
	}

	if f.failAfter >= 0 && s.index >= f.failAfter {
		if f.failErr == nil {
			return stream.ResponseChunk{}, errors.New("fake stream failure")
		}
		return stream.ResponseChunk{}, f.failErr
	}

	if s.index >= len(f.chunks) {
		return stream.ResponseChunk{}, io.EOF
	}

	chunk := f.chunks[s.index]
	s.index++
	return chunk, nil
}

func (s *fakeChunkStream) Close() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	s.source.closed = true
	return nil
}

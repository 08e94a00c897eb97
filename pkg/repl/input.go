package repl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// Input reads one line of user input at a time
type Input interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// LinerInput provides line editing and persistent input history
type LinerInput struct {
	line        *liner.State
	historyFile string
}

// NewLinerInput creates a terminal input whose history lives in historyFile
func NewLinerInput(historyFile string) *LinerInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &LinerInput{
		line:        line,
		historyFile: historyFile,
	}
	in.loadHistory()
	return in
}

func (in *LinerInput) loadHistory() {
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine prompts for a line and records non-blank input in history
func (in *LinerInput) ReadLine(prompt string) (string, error) {
	text, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

func (in *LinerInput) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(in.historyFile), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	in.line.WriteHistory(f)
}

// Close saves history and restores the terminal
func (in *LinerInput) Close() error {
	in.saveHistory()
	return in.line.Close()
}

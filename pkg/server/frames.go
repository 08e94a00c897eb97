package server

import (
	"github.com/killallgit/pharmai/pkg/chat"
	"github.com/killallgit/pharmai/pkg/tokens"
)

// Frame types exchanged over the chat websocket
const (
	FrameMessage  = "message"
	FrameReset    = "reset"
	FrameSnapshot = "snapshot"
	FrameDone     = "done"
	FrameError    = "error"
)

// ClientFrame is sent by the browser
type ClientFrame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ServerFrame is sent to the browser
type ServerFrame struct {
	Type         string         `json:"type"`
	Conversation string         `json:"conversation,omitempty"`
	Messages     []chat.Message `json:"messages,omitempty"`
	Usage        *tokens.Usage  `json:"usage,omitempty"`
	Error        string         `json:"error,omitempty"`
}

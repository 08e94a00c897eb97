package chat

import (
	"strings"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Phase tags an assistant message as a transient thinking trace
type Phase string

const (
	PhaseNone      Phase = ""
	PhaseReasoning Phase = "reasoning"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Phase     Phase     `json:"phase,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(content string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewReasoningMessage creates an assistant message holding model thoughts
func NewReasoningMessage(content string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Phase:     PhaseReasoning,
		Timestamp: time.Now(),
	}
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

func (m Message) IsReasoning() bool {
	return m.Role == RoleAssistant && m.Phase == PhaseReasoning
}

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

package chat

// Transcript is the ordered conversation as rendered to the user.
// Messages are append-only; only the last one is ever rewritten.
// A Transcript is not safe for concurrent mutation.
type Transcript struct {
	Messages []Message `json:"messages"`
}

// NewTranscript returns an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{Messages: make([]Message, 0)}
}

// Append adds msg to the end of the transcript
func (t *Transcript) Append(msg Message) {
	t.Messages = append(t.Messages, msg)
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Messages)
}

// Last returns the active message, if any
func (t *Transcript) Last() (Message, bool) {
	if t.Len() == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// SetLastContent overwrites the content of the active message.
// It reports false when the transcript is empty.
func (t *Transcript) SetLastContent(content string) bool {
	if t.Len() == 0 {
		return false
	}
	t.Messages[len(t.Messages)-1].Content = content
	return true
}

// Clone returns an independent copy
func (t *Transcript) Clone() *Transcript {
	clone := &Transcript{Messages: make([]Message, t.Len())}
	if t != nil {
		copy(clone.Messages, t.Messages)
	}
	return clone
}

// Reset drops every message
func (t *Transcript) Reset() {
	t.Messages = make([]Message, 0)
}

package chat

// HistoryEntry is a role/content pair in the shape upstream chat APIs expect
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FormatHistory converts a transcript into upstream chat history.
// Thinking traces are dropped; they are not part of the durable conversation.
// The transcript is never modified.
func FormatHistory(t *Transcript) []HistoryEntry {
	history := make([]HistoryEntry, 0, t.Len())
	if t == nil {
		return history
	}

	for _, msg := range t.Messages {
		if msg.IsReasoning() {
			continue
		}

		role := string(RoleAssistant)
		if msg.Role == RoleUser {
			role = string(RoleUser)
		}

		history = append(history, HistoryEntry{
			Role:    role,
			Content: msg.Content,
		})
	}

	return history
}

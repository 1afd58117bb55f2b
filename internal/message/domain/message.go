package domain

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleRequester Role = "requester"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a session transcript. Content is already moderated
// at persistence time: flagged text is replaced by a placeholder before the
// row is written, never after.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// TranscriptEntry is the (role, content) pair handed to the summarization
// collaborator.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageState tracks the lifecycle of a chat message. User messages are
// Completed from the moment they are appended; the in-flight assistant
// message walks Pending -> Streaming* -> {Completed, Failed}.
type MessageState int

const (
	StatePending MessageState = iota
	StateStreaming
	StateCompleted
	StateFailed
)

// Terminal reports whether the state admits no further content changes.
func (s MessageState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

func (s MessageState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PendingContent is the sentinel shown for an assistant message that has
// been appended but has not received any content yet.
const PendingContent = "…"

// ChatMessage is one entry in the session transcript. The ID is assigned at
// append time and is the only key used to address the in-flight message.
type ChatMessage struct {
	ID        string
	Content   string
	IsUser    bool
	ModelName string
	CreatedAt time.Time
	State     MessageState
}

func NewUserMessage(content string, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		IsUser:    true,
		CreatedAt: now,
		State:     StateCompleted,
	}
}

func NewPendingMessage(modelName string, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Content:   PendingContent,
		ModelName: modelName,
		CreatedAt: now,
		State:     StatePending,
	}
}

// ApiProfile is one saved API configuration. Profiles are immutable per
// fetch; edits replace the row wholesale through the store.
type ApiProfile struct {
	ID          int64
	ServiceName string
	BaseURL     string
	APIKey      string
	Models      string // comma-separated model identifiers
}

// ModelList splits the comma-separated model field, trimming whitespace and
// dropping empty entries.
func (p ApiProfile) ModelList() []string {
	parts := strings.Split(p.Models, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if m := strings.TrimSpace(part); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// FirstModel returns the first model in the profile's list, or "" if the
// profile declares none.
func (p ApiProfile) FirstModel() string {
	if list := p.ModelList(); len(list) > 0 {
		return list[0]
	}
	return ""
}

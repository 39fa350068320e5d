// Package chats stores and answers follow-up questions about one submission.
package chats

import (
	"errors"
	"time"
)

// MaxMessageRunes bounds one user message.
const MaxMessageRunes = 2000

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message is too long")
	// ErrAssistantUnavailable wraps every chat model failure.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// Message is one turn of a conversation. Conversations are append-only.
type Message struct {
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"createdAt"`
}

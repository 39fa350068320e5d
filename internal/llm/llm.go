// Package llm defines the vision and chat model contract used by the submission
// pipeline and the follow-up chat.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by PlaceholderClient when no provider key is set.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrTimeout wraps upstream calls that exceeded the fixed request timeout.
	ErrTimeout = errors.New("llm request timeout")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// HairInput carries the photos and questionnaire answers for one analysis call.
type HairInput struct {
	PhotoURLs          []string
	HairProblem        string
	Allergies          string
	Medication         string
	Dyed               string
	WashFrequency      string
	AdditionalConcerns string
	ProductNames       []string
}

// Client abstracts the multimodal model provider.
type Client interface {
	// AnalyzeHair sends every photo URL with one prompt and returns the model's markdown.
	AnalyzeHair(ctx context.Context, input HairInput) (string, error)
	// Chat completes a conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) AnalyzeHair(context.Context, HairInput) (string, error) {
	return "", ErrNotConfigured
}

func (PlaceholderClient) Chat(context.Context, []Message) (string, error) {
	return "", ErrNotConfigured
}

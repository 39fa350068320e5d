package chats

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"hairalyzer-backend/internal/llm"
	"hairalyzer-backend/internal/shared/metrics"
	"hairalyzer-backend/internal/shared/telemetry"
	"hairalyzer-backend/internal/submissions"
)

// DefaultHistoryBudget is the token budget for prior turns sent with a question.
const DefaultHistoryBudget = 3000

// SubmissionGetter returns a submission owned by userID or submissions.ErrNotFound.
type SubmissionGetter interface {
	Get(ctx context.Context, userID, id string) (submissions.Submission, error)
}

// Service answers chat messages with the stored analysis as context.
type Service struct {
	Submissions   SubmissionGetter
	Repo          Repo
	LLM           llm.Client
	Tokens        llm.TokenCounter
	HistoryBudget int
	Now           func() time.Time
}

// NewService constructs a Service with the default history budget.
func NewService(subs SubmissionGetter, repo Repo, client llm.Client) *Service {
	return &Service{
		Submissions:   subs,
		Repo:          repo,
		LLM:           client,
		Tokens:        llm.NewTokenCounter(),
		HistoryBudget: DefaultHistoryBudget,
	}
}

// History returns the conversation of a submission owned by userID.
func (s *Service) History(ctx context.Context, userID, submissionID string) ([]Message, error) {
	if _, err := s.Submissions.Get(ctx, userID, submissionID); err != nil {
		return nil, err
	}
	return s.Repo.History(ctx, submissionID)
}

// Send appends text to the conversation and returns the assistant reply. The
// exchange is stored only when the model answers; a storage failure after a
// reply is logged and the reply is still returned.
func (s *Service) Send(ctx context.Context, userID, submissionID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return Message{}, ErrMessageTooLong
	}

	sub, err := s.Submissions.Get(ctx, userID, submissionID)
	if err != nil {
		return Message{}, err
	}
	history, err := s.Repo.History(ctx, submissionID)
	if err != nil {
		return Message{}, fmt.Errorf("load history: %w", err)
	}
	system, err := llm.BuildChatSystemPrompt(chatContext(sub))
	if err != nil {
		return Message{}, err
	}

	turns := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		turns = append(turns, llm.Message{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, llm.Message{Role: llm.RoleUser, Content: text})
	turns = s.Tokens.TrimHistory(turns, s.budget())

	question := Message{Role: llm.RoleUser, Content: text, Timestamp: s.now()}
	reply, err := s.LLM.Chat(ctx, append([]llm.Message{{Role: llm.RoleSystem, Content: system}}, turns...))
	if err != nil {
		metrics.IncChatFailure()
		telemetry.Error("chat.reply_failed", map[string]any{
			"user_id":       userID,
			"submission_id": submissionID,
			"err":           err.Error(),
		})
		return Message{}, fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
	}
	metrics.IncChatReply()

	answer := Message{Role: llm.RoleAssistant, Content: strings.TrimSpace(reply), Timestamp: s.now()}
	if err := s.Repo.Append(ctx, submissionID, question, answer); err != nil {
		telemetry.Warn("chat.persist_failed", map[string]any{
			"user_id":       userID,
			"submission_id": submissionID,
			"err":           err.Error(),
		})
	}
	return answer, nil
}

func chatContext(sub submissions.Submission) llm.ChatContext {
	a := sub.Analysis
	return llm.ChatContext{
		HairProblem:   sub.HairProblem,
		Allergies:     sub.Allergies,
		Medication:    sub.Medication,
		Dyed:          sub.Dyed,
		WashFrequency: sub.WashFrequency,
		Description:   a.Summary(),
		Moisture:      a.Metrics.Moisture,
		Strength:      a.Metrics.Strength,
		Elasticity:    a.Metrics.Elasticity,
		ScalpHealth:   a.Metrics.ScalpHealth,
		Suggestions:   a.ProductSuggestions,
	}
}

func (s *Service) budget() int {
	if s.HistoryBudget > 0 {
		return s.HistoryBudget
	}
	return DefaultHistoryBudget
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

package chats

import "context"

// Repo persists conversations keyed by submission id.
type Repo interface {
	// Append stores msgs at the end of the conversation in one write.
	Append(ctx context.Context, submissionID string, msgs ...Message) error
	// History returns the conversation oldest first.
	History(ctx context.Context, submissionID string) ([]Message, error)
}

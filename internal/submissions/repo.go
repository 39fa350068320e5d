package submissions

import (
	"context"
	"time"

	"hairalyzer-backend/internal/analyses"
)

// Repo persists submissions. Exactly one backend is active per process.
type Repo interface {
	// Create stores a new submission atomically and returns the stored record.
	Create(ctx context.Context, s Submission) (Submission, error)
	GetByID(ctx context.Context, id string) (Submission, error)
	// ListByUser returns the user's submissions, newest first.
	ListByUser(ctx context.Context, userID string) ([]Submission, error)
	// UpdateAnalysis rewrites only the analysis of an existing submission.
	UpdateAnalysis(ctx context.Context, id string, a analyses.Analysis, updatedAt time.Time) error
	// AssignOwner sets the owner of a submission that has none. It returns
	// ErrOwnerConflict when the submission already has an owner.
	AssignOwner(ctx context.Context, id, userID string, updatedAt time.Time) error
	// List pages through all submissions oldest first.
	List(ctx context.Context, limit, offset int) ([]Submission, error)
}

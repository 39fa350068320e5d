package submissions

import (
	"context"
	"sort"
	"sync"
	"time"

	"hairalyzer-backend/internal/analyses"
)

// MemoryRepo stores submissions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Submission
	order []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Submission)}
}

// Create stores the submission.
func (r *MemoryRepo) Create(ctx context.Context, s Submission) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	s = cloneSubmission(s.normalize())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
	r.order = append(r.order, s.ID)
	return cloneSubmission(s), nil
}

// GetByID returns a submission by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return cloneSubmission(s), nil
}

// ListByUser returns the user's submissions, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Submission{}
	for _, id := range r.order {
		if s := r.byID[id]; s.UserID == userID {
			out = append(out, cloneSubmission(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateAnalysis replaces the stored analysis.
func (r *MemoryRepo) UpdateAnalysis(ctx context.Context, id string, a analyses.Analysis, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.Analysis = cloneAnalysis(a.Normalize())
	s.UpdatedAt = updatedAt
	r.byID[id] = s
	return nil
}

// AssignOwner sets the owner of an ownerless submission.
func (r *MemoryRepo) AssignOwner(ctx context.Context, id, userID string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if s.UserID != "" {
		return ErrOwnerConflict
	}
	s.UserID = userID
	s.UpdatedAt = updatedAt
	r.byID[id] = s
	return nil
}

// List returns submissions in insertion order.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Submission{}
	if offset < 0 {
		offset = 0
	}
	for i := offset; i < len(r.order) && (limit <= 0 || len(out) < limit); i++ {
		out = append(out, cloneSubmission(r.byID[r.order[i]]))
	}
	return out, nil
}

func cloneSubmission(s Submission) Submission {
	s.ProductNames = append([]string{}, s.ProductNames...)
	s.HairPhotoURLs = append([]string{}, s.HairPhotoURLs...)
	s.ProductPhotoURLs = append([]string{}, s.ProductPhotoURLs...)
	s.ProductPhotoAnalyses = append([]string{}, s.ProductPhotoAnalyses...)
	s.Analysis = cloneAnalysis(s.Analysis)
	return s
}

func cloneAnalysis(a analyses.Analysis) analyses.Analysis {
	a.ProductSuggestions = append([]string{}, a.ProductSuggestions...)
	a.AIBonusTips = append([]string{}, a.AIBonusTips...)
	return a
}

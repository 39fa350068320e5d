package chats

import (
	"context"
	"sync"
)

// MemoryRepo keeps conversations in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	convs map[string][]Message
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{convs: make(map[string][]Message)}
}

func (r *MemoryRepo) Append(ctx context.Context, submissionID string, msgs ...Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[submissionID] = append(r.convs[submissionID], msgs...)
	return nil
}

func (r *MemoryRepo) History(ctx context.Context, submissionID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Message{}, r.convs[submissionID]...), nil
}

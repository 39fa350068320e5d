// Package admin holds maintenance operations over stored submissions. Every
// operation reports an explicit Outcome instead of signalling through errors.
package admin

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hairalyzer-backend/internal/analyses"
	"hairalyzer-backend/internal/shared/telemetry"
	"hairalyzer-backend/internal/submissions"
)

// Status is the result kind of one operation.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusConflict Status = "conflict"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

const (
	DefaultPageSize    = 100
	DefaultConcurrency = 4
)

// Outcome describes what happened to one submission.
type Outcome struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Summary counts outcomes of a batch operation.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
	Failed   []Outcome      `json:"failed,omitempty"`
}

func (s *Summary) add(o Outcome) {
	s.Total++
	s.ByStatus[o.Status]++
	if o.Status == StatusFailed {
		s.Failed = append(s.Failed, o)
	}
}

// Service runs maintenance operations against the submission store.
type Service struct {
	Repo        submissions.Repo
	Concurrency int
	Now         func() time.Time
}

// NewService constructs a Service.
func NewService(repo submissions.Repo) *Service {
	return &Service{Repo: repo, Concurrency: DefaultConcurrency}
}

// Reprocess parses the stored raw analysis again with the stored answers and
// rewrites only the analysis.
func (s *Service) Reprocess(ctx context.Context, id string) Outcome {
	sub, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return outcomeFor(id, err)
	}
	return s.reprocess(ctx, sub)
}

func (s *Service) reprocess(ctx context.Context, sub submissions.Submission) Outcome {
	if strings.TrimSpace(sub.Analysis.RawAnalysis) == "" {
		return Outcome{ID: sub.ID, Status: StatusSkipped, Detail: "no raw analysis stored"}
	}
	next := analyses.Parse(sub.Analysis.RawAnalysis, sub.Answers.UserData())
	if reflect.DeepEqual(next, sub.Analysis.Normalize()) {
		return Outcome{ID: sub.ID, Status: StatusSkipped, Detail: "analysis unchanged"}
	}
	if err := s.Repo.UpdateAnalysis(ctx, sub.ID, next, s.now()); err != nil {
		return outcomeFor(sub.ID, err)
	}
	return Outcome{ID: sub.ID, Status: StatusOK}
}

// ReprocessAll pages through every submission and reprocesses each page with
// bounded concurrency. It stops early only when a page cannot be listed.
func (s *Service) ReprocessAll(ctx context.Context, pageSize int) (Summary, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	summary := Summary{ByStatus: map[Status]int{}}
	var mu sync.Mutex

	for offset := 0; ; offset += pageSize {
		page, err := s.Repo.List(ctx, pageSize, offset)
		if err != nil {
			return summary, fmt.Errorf("list submissions at offset %d: %w", offset, err)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency())
		for _, sub := range page {
			sub := sub
			g.Go(func() error {
				o := s.reprocess(gctx, sub)
				mu.Lock()
				summary.add(o)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
		telemetry.Info("admin.reprocess_page", map[string]any{
			"offset": offset,
			"count":  len(page),
			"total":  summary.Total,
		})
		if len(page) < pageSize {
			return summary, nil
		}
	}
}

// AssignOwner gives an ownerless submission to userID.
func (s *Service) AssignOwner(ctx context.Context, id, userID string) Outcome {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Outcome{ID: id, Status: StatusFailed, Detail: "user id is required"}
	}
	sub, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return outcomeFor(id, err)
	}
	switch sub.UserID {
	case userID:
		return Outcome{ID: id, Status: StatusSkipped, Detail: "already owned by this user"}
	case "":
	default:
		return Outcome{ID: id, Status: StatusConflict, Detail: "owned by another user"}
	}
	if err := s.Repo.AssignOwner(ctx, id, userID, s.now()); err != nil {
		return outcomeFor(id, err)
	}
	return Outcome{ID: id, Status: StatusOK}
}

func outcomeFor(id string, err error) Outcome {
	switch {
	case errors.Is(err, submissions.ErrNotFound):
		return Outcome{ID: id, Status: StatusNotFound}
	case errors.Is(err, submissions.ErrOwnerConflict):
		return Outcome{ID: id, Status: StatusConflict, Detail: "owned by another user"}
	default:
		return Outcome{ID: id, Status: StatusFailed, Detail: err.Error()}
	}
}

func (s *Service) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultConcurrency
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

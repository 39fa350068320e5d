// Package health reports liveness and dependency readiness.
package health

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"hairalyzer-backend/internal/shared/storage/db"
	"hairalyzer-backend/internal/shared/telemetry"
)

const (
	StateUp       = "up"
	StateDown     = "down"
	StateDisabled = "disabled"

	defaultTimeout = 3 * time.Second
)

// Checker probes one dependency. A nil Check means the dependency is not configured.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// SQL checks a Postgres pool.
func SQL(name string, conn *sql.DB) Checker {
	return Checker{Name: name, Check: func(ctx context.Context) error {
		return db.Ping(ctx, conn, defaultTimeout)
	}}
}

// Mongo checks a Mongo client against the primary.
func Mongo(name string, client *mongo.Client) Checker {
	return Checker{Name: name, Check: func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}}
}

// Redis checks a Redis client.
func Redis(name string, client *redis.Client) Checker {
	return Checker{Name: name, Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Disabled reports a dependency that is intentionally not configured.
func Disabled(name string) Checker {
	return Checker{Name: name}
}

// Report is the readiness payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Service runs the configured checkers.
type Service struct {
	checkers []Checker
	timeout  time.Duration
}

// NewService constructs a Service over checkers.
func NewService(checkers ...Checker) *Service {
	return &Service{checkers: checkers, timeout: defaultTimeout}
}

// Status probes every checker concurrently. Disabled dependencies do not
// make the report unhealthy.
func (s *Service) Status(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := Report{OK: true, Checks: make(map[string]string, len(s.checkers))}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range s.checkers {
		if c.Check == nil {
			mu.Lock()
			report.Checks[c.Name] = StateDisabled
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			err := c.Check(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.OK = false
				report.Checks[c.Name] = StateDown
				telemetry.Warn("health.check_failed", map[string]any{"check": c.Name, "err": err.Error()})
				return
			}
			report.Checks[c.Name] = StateUp
		}(c)
	}
	wg.Wait()
	return report
}

// Names lists the configured checks alphabetically.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.checkers))
	for _, c := range s.checkers {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

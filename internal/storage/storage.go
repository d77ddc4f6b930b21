package storage

import (
	"context"
	"time"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/events"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// GateRunRecord is the persisted summary of one gate run, used for trend
// snapshots. Full decisions are derived values and are not persisted.
type GateRunRecord struct {
	RunID         string    `json:"run_id"`
	TaskKey       string    `json:"task_key"`
	Status        string    `json:"status"`
	CheckCount    int       `json:"check_count"`
	BlockingCount int       `json:"blocking_count"`
	WarningCount  int       `json:"warning_count"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// Storage is the persistence boundary for the gate orchestrator. The failure
// streak record is the only state the orchestrator requires to survive
// across runs; run history and events exist for trend reporting.
type Storage interface {
	// GetStreak returns the failure streak for a task key. A key that has
	// never failed returns a zero-count streak, not an error.
	GetStreak(ctx context.Context, taskKey string) (*types.FailureStreak, error)

	// IncrementStreak atomically increments the consecutive-failure counter
	// for a task key, capped at the given maximum. The read-modify-write is
	// performed inside the database so sequential runs never lose updates.
	IncrementStreak(ctx context.Context, taskKey string, ceiling int) (*types.FailureStreak, error)

	// ResetStreak sets the counter for a task key back to zero.
	ResetStreak(ctx context.Context, taskKey string) (*types.FailureStreak, error)

	// RecordRun appends a gate run summary to the run history.
	RecordRun(ctx context.Context, rec *GateRunRecord) error

	// RecentRuns returns the most recent run records, newest first.
	// An empty taskKey returns runs across all keys.
	RecentRuns(ctx context.Context, taskKey string, limit int) ([]*GateRunRecord, error)

	// StoreEvent appends an event to the gate activity feed.
	StoreEvent(ctx context.Context, event *events.GateEvent) error

	// GetEvents returns activity feed events matching the filter, oldest first.
	GetEvents(ctx context.Context, filter events.Filter) ([]*events.GateEvent, error)

	// Close releases the underlying database handle.
	Close() error
}

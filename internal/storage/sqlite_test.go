package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/events"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "gate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetStreakUnknownKeyReturnsZero(t *testing.T) {
	store := newTestStorage(t)

	streak, err := store.GetStreak(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", streak.TaskKey)
	assert.Equal(t, 0, streak.ConsecutiveFailures)
}

func TestIncrementStreakCapsAtCeiling(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		streak, err := store.IncrementStreak(ctx, "task-1", 3)
		require.NoError(t, err)

		want := i
		if want > 3 {
			want = 3
		}
		assert.Equal(t, want, streak.ConsecutiveFailures, "after %d increments", i)
	}
}

func TestResetStreakOnUnknownKeyIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	streak, err := store.ResetStreak(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 0, streak.ConsecutiveFailures)

	_, err = store.IncrementStreak(ctx, "task-1", 3)
	require.NoError(t, err)
	streak, err = store.ResetStreak(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 0, streak.ConsecutiveFailures)
}

func TestStreaksIsolatedPerTaskKey(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.IncrementStreak(ctx, "task-1", 3)
	require.NoError(t, err)

	streak, err := store.GetStreak(ctx, "task-2")
	require.NoError(t, err)
	assert.Equal(t, 0, streak.ConsecutiveFailures)
}

func TestStreakRejectsEmptyTaskKey(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetStreak(ctx, "")
	assert.Error(t, err)
	_, err = store.IncrementStreak(ctx, "", 3)
	assert.Error(t, err)
	_, err = store.ResetStreak(ctx, "")
	assert.Error(t, err)
}

func TestRecordAndListRuns(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		err := store.RecordRun(ctx, &GateRunRecord{
			RunID:         fmt.Sprintf("run-%d", i),
			TaskKey:       "task-1",
			Status:        "blocked",
			CheckCount:    5,
			BlockingCount: 1,
			DurationMs:    1200,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.RecordRun(ctx, &GateRunRecord{
		RunID: "other", TaskKey: "task-2", Status: "pass",
	}))

	runs, err := store.RecentRuns(ctx, "task-1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "run-1", runs[1].RunID)
	assert.Equal(t, "blocked", runs[0].Status)
	assert.Equal(t, int64(1200), runs[0].DurationMs)
}

func TestRecordRunRejectsDuplicateRunID(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rec := &GateRunRecord{RunID: "run-1", TaskKey: "task-1", Status: "pass"}
	require.NoError(t, store.RecordRun(ctx, rec))
	assert.Error(t, store.RecordRun(ctx, rec))
}

func TestStoreAndFilterEvents(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	first := events.New(events.EventTypeGateRunStarted, "run-1", "task-1",
		events.SeverityInfo, "Gate run started", map[string]interface{}{"tier": "small"})
	second := events.New(events.EventTypeGateRunCompleted, "run-1", "task-1",
		events.SeverityInfo, "Gate run completed: pass", nil)
	other := events.New(events.EventTypeBreakerReset, "", "task-2",
		events.SeverityInfo, "Circuit breaker reset by explicit override", nil)

	// Force distinct timestamps so ordering is deterministic.
	second.Timestamp = first.Timestamp.Add(time.Second)

	for _, e := range []*events.GateEvent{second, first, other} {
		require.NoError(t, store.StoreEvent(ctx, e))
	}

	got, err := store.GetEvents(ctx, events.Filter{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Oldest first.
	assert.Equal(t, events.EventTypeGateRunStarted, got[0].Type)
	assert.Equal(t, events.EventTypeGateRunCompleted, got[1].Type)

	// Structured data round-trips through the TEXT column.
	assert.Equal(t, "small", got[0].Data["tier"])
}

func TestGetEventsByTypeAndLimit(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 4; i++ {
		e := events.New(events.EventTypeCheckCompleted, "run-1", "task-1",
			events.SeverityInfo, "Check completed", nil)
		e.Timestamp = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.StoreEvent(ctx, e))
	}

	got, err := store.GetEvents(ctx, events.Filter{
		Type:  events.EventTypeCheckCompleted,
		Limit: 3,
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	recent, err := store.GetEvents(ctx, events.Filter{
		AfterTime: base.Add(2 * time.Second),
	})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

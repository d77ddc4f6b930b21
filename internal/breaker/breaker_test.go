package breaker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/storage"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

func newTestTracker(t *testing.T, threshold int) *Tracker {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "gate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tracker, err := NewTracker(store, threshold)
	require.NoError(t, err)
	return tracker
}

func TestNewTrackerRequiresStorage(t *testing.T) {
	_, err := NewTracker(nil, 3)
	assert.Error(t, err)
}

func TestNewTrackerDefaultsThreshold(t *testing.T) {
	tracker := newTestTracker(t, 0)
	assert.Equal(t, DefaultThreshold, tracker.Threshold())
}

func TestBlockedRunsBelowThresholdStayNormal(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		streak, state, err := tracker.Record(ctx, "task-1", types.StatusBlocked)
		require.NoError(t, err)
		assert.Equal(t, i, streak.ConsecutiveFailures)
		assert.Equal(t, types.BreakerNormal, state)
	}
}

func TestBreakerTripsAtThreshold(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	var state types.BreakerState
	for i := 0; i < 3; i++ {
		var err error
		_, state, err = tracker.Record(ctx, "task-1", types.StatusBlocked)
		require.NoError(t, err)
	}
	assert.Equal(t, types.BreakerTripped, state)

	allowed, _, err := tracker.AllowAutomatic(ctx, "task-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestStreakCapsAtThreshold(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	var streak *types.FailureStreak
	for i := 0; i < 7; i++ {
		var err error
		streak, _, err = tracker.Record(ctx, "task-1", types.StatusBlocked)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, streak.ConsecutiveFailures)
}

func TestPassResetsStreak(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	_, _, err := tracker.Record(ctx, "task-1", types.StatusBlocked)
	require.NoError(t, err)
	_, _, err = tracker.Record(ctx, "task-1", types.StatusBlocked)
	require.NoError(t, err)

	streak, state, err := tracker.Record(ctx, "task-1", types.StatusPass)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.ConsecutiveFailures)
	assert.Equal(t, types.BreakerNormal, state)
}

// A warned decision means nothing blocked, so the streak resets the same
// way a pass does.
func TestWarnedResetsStreak(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	_, _, err := tracker.Record(ctx, "task-1", types.StatusBlocked)
	require.NoError(t, err)

	streak, _, err := tracker.Record(ctx, "task-1", types.StatusWarned)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.ConsecutiveFailures)
}

// Two blocked runs, a pass, then two more blocked runs must not trip a
// threshold-3 breaker: only consecutive failures count.
func TestInterleavedPassPreventsTrip(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	for _, status := range []types.GateStatus{
		types.StatusBlocked, types.StatusBlocked,
		types.StatusPass,
		types.StatusBlocked, types.StatusBlocked,
	} {
		_, _, err := tracker.Record(ctx, "task-1", status)
		require.NoError(t, err)
	}

	streak, state, err := tracker.Status(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 2, streak.ConsecutiveFailures)
	assert.Equal(t, types.BreakerNormal, state)
}

func TestExplicitResetClearsTrippedState(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := tracker.Record(ctx, "task-1", types.StatusBlocked)
		require.NoError(t, err)
	}

	streak, err := tracker.Reset(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 0, streak.ConsecutiveFailures)

	allowed, _, err := tracker.AllowAutomatic(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestStreaksAreIndependentPerTaskKey(t *testing.T) {
	tracker := newTestTracker(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := tracker.Record(ctx, "task-1", types.StatusBlocked)
		require.NoError(t, err)
	}

	_, state, err := tracker.Status(ctx, "task-2")
	require.NoError(t, err)
	assert.Equal(t, types.BreakerNormal, state)
}

func TestRecordRejectsInvalidStatus(t *testing.T) {
	tracker := newTestTracker(t, 3)
	_, _, err := tracker.Record(context.Background(), "task-1", types.GateStatus("bogus"))
	assert.Error(t, err)
}

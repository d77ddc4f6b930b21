// Package breaker tracks consecutive blocked gate decisions per task key
// and trips a circuit after a threshold. Repeated automated fix attempts
// without new information are evidence of an invalid approach, not a flaky
// check; a tripped breaker forces an explicit strategy change instead of an
// infinite retry loop.
package breaker

import (
	"context"
	"fmt"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/storage"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// DefaultThreshold is the consecutive blocked decisions that trip the breaker.
const DefaultThreshold = 3

// Tracker owns the per-task-key failure streak state machine. The counter
// lives in storage so it survives across separate gate-run invocations.
type Tracker struct {
	store     storage.Storage
	threshold int
}

// NewTracker creates a failure streak tracker.
func NewTracker(store storage.Storage, threshold int) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Tracker{store: store, threshold: threshold}, nil
}

// Threshold returns the configured trip threshold.
func (t *Tracker) Threshold() int {
	return t.threshold
}

// StateOf derives the breaker state from a streak counter.
func (t *Tracker) StateOf(streak *types.FailureStreak) types.BreakerState {
	if streak != nil && streak.ConsecutiveFailures >= t.threshold {
		return types.BreakerTripped
	}
	return types.BreakerNormal
}

// Status returns the current streak and state for a task key.
func (t *Tracker) Status(ctx context.Context, taskKey string) (*types.FailureStreak, types.BreakerState, error) {
	streak, err := t.store.GetStreak(ctx, taskKey)
	if err != nil {
		return nil, types.BreakerNormal, err
	}
	return streak, t.StateOf(streak), nil
}

// Record applies one gate decision to the streak state machine:
//   - blocked increments the counter (capped at the threshold)
//   - pass and warned reset the counter to zero
//
// It returns the updated streak and state.
func (t *Tracker) Record(ctx context.Context, taskKey string, status types.GateStatus) (*types.FailureStreak, types.BreakerState, error) {
	var streak *types.FailureStreak
	var err error

	switch status {
	case types.StatusBlocked:
		streak, err = t.store.IncrementStreak(ctx, taskKey, t.threshold)
	case types.StatusPass, types.StatusWarned:
		streak, err = t.store.ResetStreak(ctx, taskKey)
	default:
		return nil, types.BreakerNormal, fmt.Errorf("invalid gate status: %q", status)
	}
	if err != nil {
		return nil, types.BreakerNormal, err
	}

	return streak, t.StateOf(streak), nil
}

// Reset clears the streak for a task key. This is the explicit user
// override path out of the tripped state; the only other way out is a
// passing decision recorded through Record.
func (t *Tracker) Reset(ctx context.Context, taskKey string) (*types.FailureStreak, error) {
	return t.store.ResetStreak(ctx, taskKey)
}

// AllowAutomatic reports whether an automatic remediation attempt may
// proceed for a task key. While tripped, the orchestrator must refuse
// further automatic attempts and surface the state for a human decision
// between continuing with a new approach and abandoning the work.
func (t *Tracker) AllowAutomatic(ctx context.Context, taskKey string) (bool, *types.FailureStreak, error) {
	streak, state, err := t.Status(ctx, taskKey)
	if err != nil {
		return false, nil, err
	}
	return state == types.BreakerNormal, streak, nil
}

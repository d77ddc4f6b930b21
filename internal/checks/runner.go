package checks

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// EventSink receives check lifecycle notifications. Implementations must be
// safe for concurrent use; the runner calls it from worker goroutines.
type EventSink func(checkID string, result *types.CheckResult)

// Runner executes all checks of one registry pass, in parallel up to a
// worker limit. Checks are logically independent, so completion order is
// arbitrary; results are returned in descriptor order so the policy
// evaluator always sees registry priority order.
type Runner struct {
	executor *Executor
	workers  int64
	sink     EventSink
}

// NewRunner creates a runner with the given concurrency limit.
func NewRunner(executor *Executor, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{executor: executor, workers: int64(workers)}
}

// SetEventSink installs a completion callback. Optional.
func (r *Runner) SetEventSink(sink EventSink) {
	r.sink = sink
}

// RunAll executes every descriptor and returns one result per descriptor,
// positionally aligned with the input. All checks run even after an earlier
// one fails, so the caller always sees the complete picture in one pass.
func (r *Runner) RunAll(ctx context.Context, descriptors []types.CheckDescriptor) []*types.CheckResult {
	results := make([]*types.CheckResult, len(descriptors))
	sem := semaphore.NewWeighted(r.workers)
	var wg sync.WaitGroup

	for i, desc := range descriptors {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: record remaining slots as errors rather
			// than leaving them pending.
			for j := i; j < len(descriptors); j++ {
				results[j] = &types.CheckResult{
					CheckID:   descriptors[j].ID,
					ExitCode:  -1,
					Outcome:   types.OutcomeError,
					RawOutput: "gate run cancelled before check executed",
				}
			}
			break
		}

		wg.Add(1)
		go func(i int, desc types.CheckDescriptor) {
			defer wg.Done()
			defer sem.Release(1)

			result := r.executor.Run(ctx, desc)
			results[i] = result
			if r.sink != nil {
				r.sink(desc.ID, result)
			}
		}(i, desc)
	}

	wg.Wait()
	return results
}

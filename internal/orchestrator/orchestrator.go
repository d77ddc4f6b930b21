// Package orchestrator drives one gate run end to end: escalation
// pre-check, a full registry pass, policy evaluation, breaker update,
// escalation post-check, and report assembly.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/breaker"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/checks"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/escalation"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/events"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/policy"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/registry"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/storage"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// ErrRunInFlight is returned when a gate run is requested for a task key
// that already has one active. The failure streak counter is not safe for
// concurrent increment, so overlapping runs of the same key are rejected
// rather than interleaved.
var ErrRunInFlight = errors.New("gate run already in flight for this task key")

// ErrBreakerOpen is returned when an automatic run is refused because the
// circuit breaker is tripped or the scope requires confirmation. The caller
// must obtain explicit direction before retrying.
var ErrBreakerOpen = errors.New("automatic gate run refused: explicit confirmation required")

// GateRequest describes one gate run trigger.
type GateRequest struct {
	// TaskKey identifies the task/session the run verifies.
	TaskKey string

	// ChangedFiles is the optional scope filter. When empty, the change set
	// is detected from version control.
	ChangedFiles []string

	// Automatic marks runs triggered without a human in the loop. Automatic
	// runs are refused whenever escalation asks for confirmation; confirmed
	// runs proceed.
	Automatic bool
}

// Config holds orchestrator construction parameters.
type Config struct {
	Registry   *registry.Registry
	Store      storage.Storage
	WorkingDir string
	Workers    int

	// BreakerThreshold trips the circuit after this many consecutive
	// blocked decisions (default 3).
	BreakerThreshold int
}

// Orchestrator coordinates gate runs. Control flow is single-threaded per
// task key; runs for distinct keys proceed concurrently.
type Orchestrator struct {
	reg        *registry.Registry
	store      storage.Storage
	tracker    *breaker.Tracker
	classifier *escalation.Classifier
	executor   *checks.Executor
	workers    int

	mu       sync.Mutex
	inFlight map[string]bool
}

// New creates an orchestrator.
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	tracker, err := breaker.NewTracker(cfg.Store, cfg.BreakerThreshold)
	if err != nil {
		return nil, err
	}

	workingDir := cfg.WorkingDir
	if workingDir == "" {
		workingDir = "."
	}

	return &Orchestrator{
		reg:        cfg.Registry,
		store:      cfg.Store,
		tracker:    tracker,
		classifier: escalation.NewClassifier(workingDir),
		executor:   checks.NewExecutor(workingDir),
		workers:    cfg.Workers,
		inFlight:   make(map[string]bool),
	}, nil
}

// Breaker exposes the failure streak tracker for callers that need status
// or explicit resets.
func (o *Orchestrator) Breaker() *breaker.Tracker {
	return o.tracker
}

// RunGate executes one complete gate run for the request and returns the
// gate report.
//
// A halt verdict stops the run before any check executes; the report then
// carries no decision. Automatic requests are additionally refused with
// ErrBreakerOpen when escalation requires confirmation.
func (o *Orchestrator) RunGate(ctx context.Context, req GateRequest) (*types.GateReport, error) {
	if req.TaskKey == "" {
		return nil, fmt.Errorf("task key is required")
	}

	if !o.claim(req.TaskKey) {
		o.emit(ctx, events.New(events.EventTypeGateRunRejected, "", req.TaskKey,
			events.SeverityWarning, "Gate run rejected: another run is in flight", nil))
		return nil, ErrRunInFlight
	}
	defer o.release(req.TaskKey)

	runID := uuid.New().String()
	startedAt := time.Now()

	// Scope is recomputed from the touched files on every run.
	scope, err := o.classifier.Classify(ctx, req.ChangedFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to classify change scope: %w", err)
	}

	streak, state, err := o.tracker.Status(ctx, req.TaskKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read breaker state: %w", err)
	}

	report := &types.GateReport{
		RunID:     runID,
		TaskKey:   req.TaskKey,
		Scope:     scope,
		StartedAt: startedAt,
		Breaker: types.BreakerStatus{
			State:               state,
			ConsecutiveFailures: streak.ConsecutiveFailures,
		},
	}

	o.emit(ctx, events.New(events.EventTypeGateRunStarted, runID, req.TaskKey,
		events.SeverityInfo, "Gate run started",
		map[string]interface{}{
			"file_count":   scope.FileCount,
			"blast_radius": scope.BlastRadius,
			"tier":         string(scope.Tier),
			"automatic":    req.Automatic,
		}))

	// Escalation pre-check, consulted before any check executes.
	verdict := escalation.Evaluate(scope, state)
	o.emitVerdict(ctx, runID, req.TaskKey, verdict)

	if verdict.Action == types.ActionHalt {
		report.Escalation = verdict
		report.Duration = time.Since(startedAt)
		o.finishRun(ctx, report)
		return report, nil
	}

	if verdict.Action == types.ActionConfirmRequired && req.Automatic {
		report.Escalation = verdict
		report.Duration = time.Since(startedAt)
		o.emit(ctx, events.New(events.EventTypeRemediationRefused, runID, req.TaskKey,
			events.SeverityWarning, "Automatic attempt refused: "+verdict.Reason,
			map[string]interface{}{"consecutive_failures": streak.ConsecutiveFailures}))
		return report, ErrBreakerOpen
	}

	// One complete registry pass. All checks run even after an earlier
	// failure so the caller sees the full picture in one report. The runner
	// is per-run: its event sink captures this run's identity.
	runner := checks.NewRunner(o.executor, o.workers)
	runner.SetEventSink(func(checkID string, result *types.CheckResult) {
		if result.Retried {
			o.emit(ctx, events.New(events.EventTypeCheckRetried, runID, req.TaskKey,
				events.SeverityWarning, "Check "+checkID+" retried after tooling error", nil))
		}
		o.emit(ctx, events.NewCheckCompleted(runID, req.TaskKey, checkID,
			string(result.Outcome), result.ExitCode, result.Duration))
	})
	results := runner.RunAll(ctx, o.reg.Descriptors())
	report.Results = results

	report.Decision = policy.Evaluate(o.reg, results)

	// Breaker update from this decision.
	newStreak, newState, err := o.tracker.Record(ctx, req.TaskKey, report.Decision.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update failure streak: %w", err)
	}
	if newState != state {
		o.emit(ctx, events.NewBreakerStateChange(runID, req.TaskKey,
			string(state), string(newState), newStreak.ConsecutiveFailures))
	}
	report.Breaker = types.BreakerStatus{
		State:               newState,
		ConsecutiveFailures: newStreak.ConsecutiveFailures,
	}

	// Escalation post-check with the updated breaker state, consulted again
	// before completion is declared.
	report.Escalation = escalation.Evaluate(scope, newState)
	report.Duration = time.Since(startedAt)

	o.finishRun(ctx, report)
	return report, nil
}

// ResetBreaker clears the failure streak for a task key. This is the
// explicit user override out of the tripped state.
func (o *Orchestrator) ResetBreaker(ctx context.Context, taskKey string) (*types.FailureStreak, error) {
	streak, err := o.tracker.Reset(ctx, taskKey)
	if err != nil {
		return nil, err
	}

	o.emit(ctx, events.New(events.EventTypeBreakerReset, "", taskKey,
		events.SeverityInfo, "Circuit breaker reset by explicit override", nil))
	return streak, nil
}

// claim marks a task key as having an active run.
func (o *Orchestrator) claim(taskKey string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[taskKey] {
		return false
	}
	o.inFlight[taskKey] = true
	return true
}

func (o *Orchestrator) release(taskKey string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, taskKey)
}

// finishRun persists the run summary and emits the completion event.
func (o *Orchestrator) finishRun(ctx context.Context, report *types.GateReport) {
	status := "halted"
	blocking, warning, checkCount := 0, 0, 0
	if report.Decision != nil {
		status = string(report.Decision.Status)
		blocking = len(report.Decision.BlockingFailures)
		warning = len(report.Decision.Warnings)
		checkCount = len(report.Results)
	}

	rec := &storage.GateRunRecord{
		RunID:         report.RunID,
		TaskKey:       report.TaskKey,
		Status:        status,
		CheckCount:    checkCount,
		BlockingCount: blocking,
		WarningCount:  warning,
		DurationMs:    report.Duration.Milliseconds(),
		CreatedAt:     report.StartedAt,
	}
	if err := o.store.RecordRun(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record gate run: %v\n", err)
	}

	o.emit(ctx, events.New(events.EventTypeGateRunCompleted, report.RunID, report.TaskKey,
		events.SeverityInfo, "Gate run completed: "+status,
		map[string]interface{}{
			"status":      status,
			"check_count": checkCount,
			"blocking":    blocking,
			"warnings":    warning,
			"duration_ms": report.Duration.Milliseconds(),
			"breaker":     string(report.Breaker.State),
			"escalation":  string(report.Escalation.Action),
		}))
}

func (o *Orchestrator) emitVerdict(ctx context.Context, runID, taskKey string, verdict types.EscalationVerdict) {
	severity := events.SeverityInfo
	if verdict.Action != types.ActionProceed {
		severity = events.SeverityWarning
	}
	o.emit(ctx, events.New(events.EventTypeEscalationVerdict, runID, taskKey,
		severity, "Escalation verdict: "+string(verdict.Action),
		map[string]interface{}{
			"action": string(verdict.Action),
			"reason": verdict.Reason,
		}))
}

// emit stores an activity event. Event logging is best effort; failures are
// reported but never fail the gate run.
func (o *Orchestrator) emit(ctx context.Context, event *events.GateEvent) {
	if err := o.store.StoreEvent(ctx, event); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to store gate event: %v\n", err)
	}
}

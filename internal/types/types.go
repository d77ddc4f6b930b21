package types

import (
	"fmt"
	"strings"
	"time"
)

// BlockingClass determines whether a failing check can block completion
// or only raise a warning.
type BlockingClass string

const (
	ClassBlocking BlockingClass = "blocking"
	ClassWarning  BlockingClass = "warning"
)

// IsValid checks if the blocking class value is valid
func (c BlockingClass) IsValid() bool {
	switch c {
	case ClassBlocking, ClassWarning:
		return true
	}
	return false
}

// Default timeouts for check execution. Fast checks (lint, build) get the
// short timeout; test suites get the long one.
const (
	DefaultCheckTimeout = 120 * time.Second
	DefaultTestTimeout  = 300 * time.Second
)

// CheckDescriptor is the static metadata for one quality check. Descriptors
// are defined at configuration time and shared read-only across gate runs.
type CheckDescriptor struct {
	ID       string        `json:"id"`
	Priority int           `json:"priority"`
	Class    BlockingClass `json:"class"`
	Timeout  time.Duration `json:"timeout"`

	// Command is the external invocation (argv form). An empty command means
	// the underlying tool was not detected for this project; the executor
	// reports such checks as skipped.
	Command []string `json:"command,omitempty"`

	// RetryOnError allows one retry with backoff when the check hits a
	// tooling error (timeout, crash). Only safe for idempotent checks.
	RetryOnError bool `json:"retry_on_error,omitempty"`
}

// Validate checks if the descriptor has valid field values
func (d *CheckDescriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("check id is required")
	}
	if !d.Class.IsValid() {
		return fmt.Errorf("invalid blocking class for %s: %q", d.ID, d.Class)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative for %s (got %v)", d.ID, d.Timeout)
	}
	return nil
}

// EffectiveTimeout returns the configured timeout, falling back to the
// default for the check kind when unset.
func (d *CheckDescriptor) EffectiveTimeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	if d.ID == "test" {
		return DefaultTestTimeout
	}
	return DefaultCheckTimeout
}

// Outcome classifies what happened when a check ran.
type Outcome string

const (
	// OutcomePass means the check ran and found nothing.
	OutcomePass Outcome = "pass"
	// OutcomeFail means the check ran successfully and found a real violation.
	OutcomeFail Outcome = "fail"
	// OutcomeError means the check could not run (timeout, crash, missing
	// binary). This is a tooling problem, not a finding.
	OutcomeError Outcome = "error"
	// OutcomeSkipped means the tool is not detected or configured for the
	// project.
	OutcomeSkipped Outcome = "skipped"
)

// IsValid checks if the outcome value is valid
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomeError, OutcomeSkipped:
		return true
	}
	return false
}

// Severity ranks a finding reported by a check.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// Finding is one defect reported by a check.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
}

// Location renders the optional file+line position, or "" when absent.
func (f *Finding) Location() string {
	if f.File == "" {
		return ""
	}
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

// CheckResult is the outcome of one check execution. It is created once by
// the executor that ran the check and never mutated downstream.
type CheckResult struct {
	CheckID   string        `json:"check_id"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	Outcome   Outcome       `json:"outcome"`
	Findings  []Finding     `json:"findings,omitempty"`
	RawOutput string        `json:"raw_output,omitempty"`

	// Retried is set when the executor re-ran the check after a tooling error.
	Retried bool `json:"retried,omitempty"`
}

// GateStatus is the overall verdict of one gate run.
type GateStatus string

const (
	StatusPass    GateStatus = "pass"
	StatusBlocked GateStatus = "blocked"
	StatusWarned  GateStatus = "warned"
)

// IsValid checks if the gate status value is valid
func (s GateStatus) IsValid() bool {
	switch s {
	case StatusPass, StatusBlocked, StatusWarned:
		return true
	}
	return false
}

// GateDecision is the derived verdict over one complete registry pass.
// It is recomputed on every run and never persisted.
type GateDecision struct {
	Status GateStatus `json:"status"`

	// BlockingFailures holds results that both failed and carry the blocking
	// class. Non-empty iff Status is blocked.
	BlockingFailures []*CheckResult `json:"blocking_failures,omitempty"`

	// Warnings holds warning-class failures plus every error/skipped result
	// regardless of class.
	Warnings []*CheckResult `json:"warnings,omitempty"`

	// Advisories carries non-result notes, e.g. zero gate coverage when the
	// registry is empty.
	Advisories []string `json:"advisories,omitempty"`
}

// FailureStreak is the per-task-key consecutive-failure counter. It is the
// only state that survives across gate runs.
type FailureStreak struct {
	TaskKey             string    `json:"task_key"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastUpdated         time.Time `json:"last_updated"`
}

// BreakerState is the circuit breaker state derived from a failure streak.
type BreakerState string

const (
	BreakerNormal  BreakerState = "normal"
	BreakerTripped BreakerState = "tripped"
)

// BreakerStatus is the breaker portion of a gate report.
type BreakerStatus struct {
	State               BreakerState `json:"state"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
}

// ScopeTier buckets a change by size.
type ScopeTier string

const (
	TierSmall  ScopeTier = "small"
	TierMedium ScopeTier = "medium"
	TierLarge  ScopeTier = "large"
	TierEpic   ScopeTier = "epic"
)

// Scope tier boundaries.
const (
	SmallMaxFiles      = 3
	MediumMaxFiles     = 10
	EpicBlastThreshold = 20
)

// ScopeClassification describes the size of the current change set. It is
// recomputed from the touched files on every run, never cached.
type ScopeClassification struct {
	FileCount   int       `json:"file_count"`
	BlastRadius int       `json:"blast_radius"`
	Tier        ScopeTier `json:"tier"`

	// Estimated is set when the blast radius came from a truncated or
	// best-effort reference graph.
	Estimated bool `json:"estimated,omitempty"`
}

// ClassifyTier computes the tier from file count and blast radius.
// Epic is driven by blast radius alone; the remaining tiers by file count.
func ClassifyTier(fileCount, blastRadius int) ScopeTier {
	switch {
	case blastRadius > EpicBlastThreshold:
		return TierEpic
	case fileCount > MediumMaxFiles:
		return TierLarge
	case fileCount > SmallMaxFiles:
		return TierMedium
	default:
		return TierSmall
	}
}

// EscalationAction is what the caller must do before work proceeds.
type EscalationAction string

const (
	ActionProceed         EscalationAction = "proceed"
	ActionConfirmRequired EscalationAction = "confirm_required"
	ActionHalt            EscalationAction = "halt"
)

// EscalationVerdict pairs an action with the rule that produced it.
type EscalationVerdict struct {
	Action EscalationAction `json:"action"`
	Reason string           `json:"reason,omitempty"`
}

// GateReport is the single structured output of one gate run, consumed by
// the calling workflow. The caller owns what to do with a confirm_required
// or halt verdict; the core never blocks on interactive input.
type GateReport struct {
	RunID   string `json:"run_id"`
	TaskKey string `json:"task_key"`

	// Decision is nil when escalation halted the run before any check executed.
	Decision *GateDecision `json:"decision,omitempty"`

	// Results are ordered by registry priority, not completion order.
	Results []*CheckResult `json:"results"`

	Breaker    BreakerStatus       `json:"breaker"`
	Scope      ScopeClassification `json:"scope"`
	Escalation EscalationVerdict   `json:"escalation"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Halted reports whether the run was stopped before executing any checks.
func (r *GateReport) Halted() bool {
	return r.Decision == nil && r.Escalation.Action == ActionHalt
}

package events

import (
	"time"
)

// EventType represents the type of event that occurred during a gate run.
type EventType string

const (
	// EventTypeGateRunStarted indicates a gate run began for a task key
	EventTypeGateRunStarted EventType = "gate_run_started"
	// EventTypeGateRunCompleted indicates a gate run finished with a decision
	EventTypeGateRunCompleted EventType = "gate_run_completed"
	// EventTypeGateRunRejected indicates a run request was rejected because
	// another run was already in flight for the same task key
	EventTypeGateRunRejected EventType = "gate_run_rejected"

	// EventTypeCheckCompleted indicates an external check produced a result
	EventTypeCheckCompleted EventType = "check_completed"
	// EventTypeCheckRetried indicates a check was re-run after a tooling error
	EventTypeCheckRetried EventType = "check_retried"

	// EventTypeBreakerStateChange indicates the circuit breaker transitioned
	// between normal and tripped
	EventTypeBreakerStateChange EventType = "breaker_state_change"
	// EventTypeBreakerReset indicates an explicit user override reset the streak
	EventTypeBreakerReset EventType = "breaker_reset"

	// EventTypeEscalationVerdict indicates the escalation controller produced
	// a verdict for the current change scope
	EventTypeEscalationVerdict EventType = "escalation_verdict"
	// EventTypeRemediationRefused indicates an automatic remediation attempt
	// was refused while the breaker was tripped
	EventTypeRemediationRefused EventType = "remediation_refused"
)

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates potentially problematic events
	SeverityWarning EventSeverity = "warning"
	// SeverityError indicates error events
	SeverityError EventSeverity = "error"
)

// GateEvent is one entry in the gate activity feed. Events are stored for
// trend analysis and post-hoc review of orchestrator behavior.
type GateEvent struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// RunID is the gate run this event belongs to (empty for out-of-run
	// events such as explicit breaker resets)
	RunID string `json:"run_id,omitempty"`
	// TaskKey is the task/session the gate run was evaluating
	TaskKey string `json:"task_key"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data,omitempty"`
}

// Filter selects events from the activity feed.
type Filter struct {
	TaskKey   string
	RunID     string
	Type      EventType
	AfterTime time.Time
	Limit     int
}

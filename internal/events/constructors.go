package events

import (
	"time"

	"github.com/google/uuid"
)

// New creates a gate event with a fresh ID and timestamp.
func New(eventType EventType, runID, taskKey string, severity EventSeverity, message string, data map[string]interface{}) *GateEvent {
	return &GateEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
		TaskKey:   taskKey,
		Severity:  severity,
		Message:   message,
		Data:      data,
	}
}

// NewCheckCompleted creates a check_completed event carrying the outcome,
// exit code, and duration of one check execution.
func NewCheckCompleted(runID, taskKey, checkID string, outcome string, exitCode int, duration time.Duration) *GateEvent {
	severity := SeverityInfo
	if outcome == "fail" {
		severity = SeverityWarning
	} else if outcome == "error" {
		severity = SeverityError
	}

	return New(EventTypeCheckCompleted, runID, taskKey, severity,
		"Check "+checkID+" completed: "+outcome,
		map[string]interface{}{
			"check_id":    checkID,
			"outcome":     outcome,
			"exit_code":   exitCode,
			"duration_ms": duration.Milliseconds(),
		})
}

// NewBreakerStateChange creates a breaker_state_change event.
func NewBreakerStateChange(runID, taskKey, oldState, newState string, consecutiveFailures int) *GateEvent {
	severity := SeverityInfo
	if newState == "tripped" {
		severity = SeverityError
	}

	return New(EventTypeBreakerStateChange, runID, taskKey, severity,
		"Circuit breaker "+oldState+" -> "+newState,
		map[string]interface{}{
			"old_state":            oldState,
			"new_state":            newState,
			"consecutive_failures": consecutiveFailures,
		})
}

package events

import (
	"testing"
	"time"
)

func TestNewAssignsIDAndTimestamp(t *testing.T) {
	event := New(EventTypeGateRunStarted, "run-1", "task-1", SeverityInfo, "Gate run started", nil)

	if event.ID == "" {
		t.Error("expected generated id")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if event.RunID != "run-1" || event.TaskKey != "task-1" {
		t.Errorf("unexpected identifiers: %s / %s", event.RunID, event.TaskKey)
	}

	other := New(EventTypeGateRunStarted, "run-1", "task-1", SeverityInfo, "Gate run started", nil)
	if other.ID == event.ID {
		t.Error("expected unique ids")
	}
}

func TestNewCheckCompletedSeverityTracksOutcome(t *testing.T) {
	tests := []struct {
		outcome string
		want    EventSeverity
	}{
		{"pass", SeverityInfo},
		{"skipped", SeverityInfo},
		{"fail", SeverityWarning},
		{"error", SeverityError},
	}

	for _, tt := range tests {
		event := NewCheckCompleted("run-1", "task-1", "lint", tt.outcome, 1, 250*time.Millisecond)
		if event.Severity != tt.want {
			t.Errorf("outcome %s: expected %s, got %s", tt.outcome, tt.want, event.Severity)
		}
		if event.Data["check_id"] != "lint" {
			t.Errorf("expected check_id in data, got %v", event.Data)
		}
	}
}

func TestNewBreakerStateChangeTrippedIsError(t *testing.T) {
	event := NewBreakerStateChange("run-1", "task-1", "normal", "tripped", 3)
	if event.Severity != SeverityError {
		t.Errorf("tripping should be error severity, got %s", event.Severity)
	}

	back := NewBreakerStateChange("run-1", "task-1", "tripped", "normal", 0)
	if back.Severity != SeverityInfo {
		t.Errorf("recovery should be info severity, got %s", back.Severity)
	}
}

package types

import (
	"testing"
	"time"
)

func TestCheckDescriptorValidate(t *testing.T) {
	valid := CheckDescriptor{
		ID:       "lint",
		Priority: 1,
		Class:    ClassBlocking,
		Timeout:  time.Minute,
		Command:  []string{"golangci-lint", "run"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid descriptor, got error: %v", err)
	}

	missing := valid
	missing.ID = "  "
	if err := missing.Validate(); err == nil {
		t.Error("Expected error for blank id")
	}

	badClass := valid
	badClass.Class = "advisory"
	if err := badClass.Validate(); err == nil {
		t.Error("Expected error for invalid blocking class")
	}

	negTimeout := valid
	negTimeout.Timeout = -time.Second
	if err := negTimeout.Validate(); err == nil {
		t.Error("Expected error for negative timeout")
	}
}

func TestEffectiveTimeout(t *testing.T) {
	d := CheckDescriptor{ID: "lint", Class: ClassBlocking}
	if got := d.EffectiveTimeout(); got != DefaultCheckTimeout {
		t.Errorf("Expected default check timeout, got %v", got)
	}

	d.ID = "test"
	if got := d.EffectiveTimeout(); got != DefaultTestTimeout {
		t.Errorf("Expected test suite timeout, got %v", got)
	}

	d.Timeout = 42 * time.Second
	if got := d.EffectiveTimeout(); got != 42*time.Second {
		t.Errorf("Expected explicit timeout to win, got %v", got)
	}
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		name        string
		fileCount   int
		blastRadius int
		want        ScopeTier
	}{
		{"single file", 1, 0, TierSmall},
		{"small boundary", 3, 5, TierSmall},
		{"medium", 4, 0, TierMedium},
		{"medium boundary", 10, 10, TierMedium},
		{"large", 11, 0, TierLarge},
		{"epic by blast radius", 2, 21, TierEpic},
		{"epic beats large", 30, 25, TierEpic},
		{"blast at threshold is not epic", 5, 20, TierMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTier(tt.fileCount, tt.blastRadius); got != tt.want {
				t.Errorf("ClassifyTier(%d, %d) = %s, want %s",
					tt.fileCount, tt.blastRadius, got, tt.want)
			}
		})
	}
}

func TestFindingLocation(t *testing.T) {
	f := Finding{Severity: SeverityHigh, Message: "unused variable"}
	if got := f.Location(); got != "" {
		t.Errorf("Expected empty location, got %q", got)
	}

	f.File = "internal/server/server.go"
	if got := f.Location(); got != "internal/server/server.go" {
		t.Errorf("Expected file-only location, got %q", got)
	}

	f.Line = 42
	if got := f.Location(); got != "internal/server/server.go:42" {
		t.Errorf("Expected file:line location, got %q", got)
	}
}

func TestEnumValidity(t *testing.T) {
	for _, o := range []Outcome{OutcomePass, OutcomeFail, OutcomeError, OutcomeSkipped} {
		if !o.IsValid() {
			t.Errorf("Expected outcome %s to be valid", o)
		}
	}
	if Outcome("crashed").IsValid() {
		t.Error("Expected unknown outcome to be invalid")
	}

	for _, s := range []GateStatus{StatusPass, StatusBlocked, StatusWarned} {
		if !s.IsValid() {
			t.Errorf("Expected status %s to be valid", s)
		}
	}
	if GateStatus("failed").IsValid() {
		t.Error("Expected unknown status to be invalid")
	}

	if Severity("fatal").IsValid() {
		t.Error("Expected unknown severity to be invalid")
	}
}

func TestGateReportHalted(t *testing.T) {
	r := &GateReport{
		Escalation: EscalationVerdict{Action: ActionHalt, Reason: "epic scope"},
	}
	if !r.Halted() {
		t.Error("Expected report with halt verdict and no decision to be halted")
	}

	r.Decision = &GateDecision{Status: StatusPass}
	if r.Halted() {
		t.Error("Expected report with a decision to not be halted")
	}
}

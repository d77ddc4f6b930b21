package registry

import (
	"testing"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

func desc(id string, priority int, class types.BlockingClass) types.CheckDescriptor {
	return types.CheckDescriptor{
		ID:       id,
		Priority: priority,
		Class:    class,
		Command:  []string{"true"},
	}
}

func TestNewOrdersByPriorityThenID(t *testing.T) {
	reg, err := New([]types.CheckDescriptor{
		desc("security", 4, types.ClassWarning),
		desc("lint", 1, types.ClassBlocking),
		desc("build", 2, types.ClassBlocking),
		desc("audit", 2, types.ClassWarning),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := reg.Descriptors()
	want := []string{"lint", "audit", "build", "security"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]types.CheckDescriptor{
		desc("lint", 1, types.ClassBlocking),
		desc("lint", 2, types.ClassBlocking),
	})
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestNewRejectsInvalidDescriptor(t *testing.T) {
	_, err := New([]types.CheckDescriptor{
		{ID: "", Priority: 1, Class: types.ClassBlocking, Command: []string{"true"}},
	})
	if err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestDescriptorsReturnsCopy(t *testing.T) {
	reg, err := New([]types.CheckDescriptor{desc("lint", 1, types.ClassBlocking)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := reg.Descriptors()
	first[0].ID = "mutated"

	if reg.Descriptors()[0].ID != "lint" {
		t.Error("registry state leaked through Descriptors")
	}
}

func TestClassDefaultsToWarningForUnknown(t *testing.T) {
	reg, err := New([]types.CheckDescriptor{desc("lint", 1, types.ClassBlocking)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := reg.Class("lint"); got != types.ClassBlocking {
		t.Errorf("expected blocking for lint, got %s", got)
	}
	if got := reg.Class("unknown"); got != types.ClassWarning {
		t.Errorf("expected warning for unknown check, got %s", got)
	}
}

func TestEmptyRegistryIsValid(t *testing.T) {
	reg, err := New(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("expected 0 checks, got %d", reg.Len())
	}
}

// Package registry holds the static check descriptor set for a project.
// One registry is built at configuration time and shared read-only across
// gate runs; descriptors are never mutated after construction.
package registry

import (
	"fmt"
	"sort"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// Registry is an immutable, priority-ordered set of check descriptors.
type Registry struct {
	descriptors []types.CheckDescriptor
	byID        map[string]types.CheckDescriptor
}

// New builds a registry from descriptors. Descriptors are validated and
// rejected on duplicate IDs; the stored order is priority ascending with
// ID as the tiebreaker, so iteration order is total and stable.
func New(descriptors []types.CheckDescriptor) (*Registry, error) {
	byID := make(map[string]types.CheckDescriptor, len(descriptors))
	ordered := make([]types.CheckDescriptor, 0, len(descriptors))

	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid check descriptor: %w", err)
		}
		if _, exists := byID[d.ID]; exists {
			return nil, fmt.Errorf("duplicate check id: %s", d.ID)
		}
		byID[d.ID] = d
		ordered = append(ordered, d)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	return &Registry{descriptors: ordered, byID: byID}, nil
}

// Descriptors returns the checks in priority order. The returned slice is a
// copy; callers cannot mutate registry state through it.
func (r *Registry) Descriptors() []types.CheckDescriptor {
	out := make([]types.CheckDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Get returns the descriptor for a check id.
func (r *Registry) Get(id string) (types.CheckDescriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Class returns the blocking class for a check id, defaulting to warning
// for unknown checks so an unregistered result can never block.
func (r *Registry) Class(id string) types.BlockingClass {
	if d, ok := r.byID[id]; ok {
		return d.Class
	}
	return types.ClassWarning
}

// Package escalation decides whether work may proceed given the size of
// the current change and the circuit breaker state. It is consulted before
// implementation work starts and again before completion is declared.
package escalation

import (
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// Verdict reasons. The wording is part of the caller contract: workflows
// surface these strings directly to humans.
const (
	ReasonEpicScope = "epic scope — decompose into isolated units with independent acceptance criteria and bounded blast radius (≤15 files each) before any implementation."

	ReasonLargeScope = "large-scope change requires an approved plan before implementation."

	ReasonBreakerTripped = "circuit breaker tripped — require explicit direction before further attempts."
)

// Evaluate returns the escalation verdict for a change scope and breaker
// state. Rules are checked in order; the first match wins:
//
//  1. Blast radius above the epic threshold halts outright. A halt verdict
//     is authoritative: no check executes until the scope is reduced and
//     the change is reclassified.
//  2. A large tier requires an approved plan.
//  3. A tripped breaker requires explicit direction.
//  4. Otherwise proceed.
func Evaluate(scope types.ScopeClassification, breakerState types.BreakerState) types.EscalationVerdict {
	if scope.BlastRadius > types.EpicBlastThreshold {
		return types.EscalationVerdict{
			Action: types.ActionHalt,
			Reason: ReasonEpicScope,
		}
	}

	if scope.Tier == types.TierLarge {
		return types.EscalationVerdict{
			Action: types.ActionConfirmRequired,
			Reason: ReasonLargeScope,
		}
	}

	if breakerState == types.BreakerTripped {
		return types.EscalationVerdict{
			Action: types.ActionConfirmRequired,
			Reason: ReasonBreakerTripped,
		}
	}

	return types.EscalationVerdict{Action: types.ActionProceed}
}

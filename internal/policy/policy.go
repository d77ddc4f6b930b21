// Package policy turns one complete registry pass of check results into a
// single gate decision. Evaluation is a pure function: the same results
// always produce the same decision.
package policy

import (
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/registry"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// ZeroCoverageAdvisory is attached when an empty registry trivially passes.
const ZeroCoverageAdvisory = "no checks configured: gate coverage is zero"

// Evaluate produces a GateDecision from the ordered results of one full
// registry pass.
//
// Rules:
//   - A fail outcome on a blocking-class check is a blocking failure.
//   - A fail outcome on a warning-class check is a warning.
//   - error and skipped outcomes are always warnings regardless of class:
//     the check could not run, and absence of evidence must not be treated
//     as failing evidence.
//   - Status is blocked if any blocking failure exists, else warned if any
//     warning exists, else pass.
//
// Result order is preserved into the decision, so reporting follows registry
// priority. Priority never short-circuits evaluation.
func Evaluate(reg *registry.Registry, results []*types.CheckResult) *types.GateDecision {
	decision := &types.GateDecision{Status: types.StatusPass}

	if reg == nil || reg.Len() == 0 {
		decision.Advisories = append(decision.Advisories, ZeroCoverageAdvisory)
		return decision
	}

	for _, result := range results {
		switch result.Outcome {
		case types.OutcomeFail:
			if reg.Class(result.CheckID) == types.ClassBlocking {
				decision.BlockingFailures = append(decision.BlockingFailures, result)
			} else {
				decision.Warnings = append(decision.Warnings, result)
			}
		case types.OutcomeError, types.OutcomeSkipped:
			// Tooling problems and undetected tools warn, never block.
			decision.Warnings = append(decision.Warnings, result)
		}
	}

	if len(decision.BlockingFailures) > 0 {
		decision.Status = types.StatusBlocked
	} else if len(decision.Warnings) > 0 {
		decision.Status = types.StatusWarned
	}

	return decision
}

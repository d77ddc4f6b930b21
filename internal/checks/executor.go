// Package checks runs external quality checks and maps their exit status
// to structured results. Every check is a black box invoked through the
// same contract: project root in, machine-parseable findings on stdout,
// exit 0 clean / 1 findings / >=2 tool error.
package checks

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// Max bytes of combined output retained on a result. Full output is the
// check's own concern; the gate report only needs enough to act on.
const maxRawOutput = 4000

// Executor invokes one external check command and produces exactly one
// CheckResult. It never mutates project files.
type Executor struct {
	workingDir   string
	retryBackoff time.Duration

	// retryLimiter paces tooling-error retries so a flaky environment
	// cannot turn one gate run into a hot retry loop.
	retryLimiter *rate.Limiter
}

// NewExecutor creates an executor rooted at the given working directory.
func NewExecutor(workingDir string) *Executor {
	if workingDir == "" {
		workingDir = "."
	}
	return &Executor{
		workingDir:   workingDir,
		retryBackoff: 2 * time.Second,
		retryLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Run executes a single check descriptor and returns its result.
//
// Outcome mapping:
// - exit 0 -> pass
// - exit 1 -> fail (the check ran and found a real violation)
// - exit >= 2, command not found, or timeout -> error (tooling problem)
// - empty command (tool not detected for the project) -> skipped
//
// A tooling error is retried at most once with backoff when the descriptor
// allows idempotent re-invocation.
func (e *Executor) Run(ctx context.Context, desc types.CheckDescriptor) *types.CheckResult {
	if len(desc.Command) == 0 {
		return &types.CheckResult{
			CheckID:   desc.ID,
			ExitCode:  -1,
			Outcome:   types.OutcomeSkipped,
			RawOutput: "tool not detected or configured for this project",
		}
	}

	result := e.runOnce(ctx, desc)

	if result.Outcome == types.OutcomeError && desc.RetryOnError && ctx.Err() == nil {
		if err := e.retryLimiter.Wait(ctx); err != nil {
			return result
		}
		select {
		case <-ctx.Done():
			return result
		case <-time.After(e.retryBackoff):
		}

		retried := e.runOnce(ctx, desc)
		retried.Retried = true
		retried.Duration += result.Duration
		return retried
	}

	return result
}

// runOnce performs a single invocation with the descriptor's timeout.
func (e *Executor) runOnce(ctx context.Context, desc types.CheckDescriptor) *types.CheckResult {
	result := &types.CheckResult{CheckID: desc.ID}

	cctx, cancel := context.WithTimeout(ctx, desc.EffectiveTimeout())
	defer cancel()

	cmd := exec.CommandContext(cctx, desc.Command[0], desc.Command[1:]...)
	cmd.Dir = e.workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)
	result.RawOutput = combineOutput(stdout.String(), stderr.String())

	// Timed out: the process has been killed by the context; its slot is
	// recorded as a tooling error, never left pending.
	if cctx.Err() == context.DeadlineExceeded {
		result.ExitCode = -1
		result.Outcome = types.OutcomeError
		if result.RawOutput == "" {
			result.RawOutput = "check timed out after " + desc.EffectiveTimeout().String()
		}
		return result
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// Command not found or failed to start.
			result.ExitCode = -1
			result.Outcome = types.OutcomeError
			result.RawOutput = combineOutput(result.RawOutput, err.Error())
			return result
		}
	}

	switch result.ExitCode {
	case 0:
		result.Outcome = types.OutcomePass
	case 1:
		result.Outcome = types.OutcomeFail
	default:
		result.Outcome = types.OutcomeError
	}

	// Findings ride on stdout as JSON. A check that emits nothing parseable
	// still gets a meaningful outcome from its exit code.
	if result.Outcome == types.OutcomeFail || result.Outcome == types.OutcomePass {
		result.Findings = parseFindings(stdout.Bytes())
		if result.Outcome == types.OutcomeFail && len(result.Findings) == 0 {
			result.Findings = []types.Finding{{
				Severity: types.SeverityMedium,
				Message:  summarizeOutput(result.RawOutput),
			}}
		}
	}

	return result
}

// combineOutput joins stdout and stderr, truncated to maxRawOutput bytes.
func combineOutput(stdout, stderr string) string {
	combined := stdout
	if stderr != "" {
		if combined != "" {
			combined += "\n"
		}
		combined += stderr
	}
	if len(combined) > maxRawOutput {
		combined = combined[:maxRawOutput] + "\n... (truncated)"
	}
	return combined
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/orchestrator"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/registry"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

var (
	runTask        string
	runScopeFiles  []string
	runWorkers     int
	runHuman       bool
	runInteractive bool
	runConfirm     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute all quality checks as one gate",
	Long: `Run every registered check in one pass and print the gate report.

Checks come from gatekeeper.yaml when present, otherwise they are
auto-detected from the project layout. Every check runs even when an
earlier one fails; the report always covers the full registry.

Exit codes:
  0 - gate passed (warnings do not block)
  1 - gate blocked by at least one blocking failure
  2 - infrastructure error (database, config, concurrent run)
  3 - halted by escalation, or confirmation required and not given`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		reg, err := buildRegistry()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open gate database: %v\n", err)
			os.Exit(2)
		}
		defer store.Close()

		workers := cfg.Workers
		if runWorkers > 0 {
			workers = runWorkers
		}

		orch, err := orchestrator.New(&orchestrator.Config{
			Registry:         reg,
			Store:            store,
			WorkingDir:       workDir,
			Workers:          workers,
			BreakerThreshold: cfg.BreakerThreshold,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		req := orchestrator.GateRequest{
			TaskKey:      runTask,
			ChangedFiles: runScopeFiles,
			Automatic:    !runConfirm,
		}

		report, err := orch.RunGate(ctx, req)
		if errors.Is(err, orchestrator.ErrBreakerOpen) {
			if !runInteractive {
				fmt.Fprintf(os.Stderr, "Refused: %s\n", report.Escalation.Reason)
				fmt.Fprintf(os.Stderr, "Re-run with --confirm (or --interactive) to proceed anyway.\n")
				os.Exit(3)
			}
			if !promptConfirm(report.Escalation.Reason) {
				fmt.Fprintf(os.Stderr, "Aborted.\n")
				os.Exit(3)
			}
			req.Automatic = false
			report, err = orch.RunGate(ctx, req)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		if runHuman {
			printHumanReport(report)
		} else {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: failed to encode report: %v\n", err)
				os.Exit(2)
			}
			fmt.Println(string(out))
		}

		os.Exit(exitCode(report))
	},
}

// buildRegistry resolves the check registry: configured checks when the
// config file lists any, auto-detection from the project layout otherwise.
func buildRegistry() (*registry.Registry, error) {
	descriptors, err := cfg.Descriptors()
	if err != nil {
		return nil, fmt.Errorf("invalid check config: %w", err)
	}
	if descriptors == nil {
		return registry.Detect(workDir)
	}
	return registry.New(descriptors)
}

// exitCode maps a gate report to the process exit code.
func exitCode(report *types.GateReport) int {
	if report.Halted() {
		return 3
	}
	if report.Decision != nil && report.Decision.Status == types.StatusBlocked {
		return 1
	}
	return 0
}

// promptConfirm asks the user whether to proceed past a confirm_required
// verdict. Returns false on any input error.
func promptConfirm(reason string) bool {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("\n%s %s\n", yellow("⚠"), reason)

	rl, err := readline.New("Proceed anyway? [y/N] ")
	if err != nil {
		return false
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printHumanReport(report *types.GateReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n", cyan("=== Gate Report ==="))
	fmt.Printf("  Task:  %s\n", report.TaskKey)
	fmt.Printf("  Run:   %s\n", gray(report.RunID))
	fmt.Printf("  Scope: %d files, blast radius %d (%s)\n",
		report.Scope.FileCount, report.Scope.BlastRadius, report.Scope.Tier)
	fmt.Println()

	if report.Halted() {
		fmt.Printf("%s HALTED\n", red("✗"))
		fmt.Printf("  %s\n\n", report.Escalation.Reason)
		return
	}

	for _, result := range report.Results {
		icon, paint := green("✓"), green
		switch result.Outcome {
		case types.OutcomeFail:
			icon, paint = red("✗"), red
		case types.OutcomeError:
			icon, paint = yellow("⚠"), yellow
		case types.OutcomeSkipped:
			icon, paint = gray("○"), gray
		}
		fmt.Printf("  %s %-10s %s %s\n", icon, result.CheckID,
			paint(string(result.Outcome)), gray(result.Duration.Round(time.Millisecond).String()))
		for _, finding := range result.Findings {
			loc := finding.Location()
			if loc != "" {
				fmt.Printf("      %s %s\n", gray(loc), finding.Message)
			} else {
				fmt.Printf("      %s\n", finding.Message)
			}
		}
	}
	fmt.Println()

	switch report.Decision.Status {
	case types.StatusBlocked:
		fmt.Printf("%s BLOCKED (%d blocking failure(s))\n", red("✗"), len(report.Decision.BlockingFailures))
	case types.StatusWarned:
		fmt.Printf("%s WARNED (%d warning(s), none blocking)\n", yellow("⚠"), len(report.Decision.Warnings))
	default:
		fmt.Printf("%s PASSED\n", green("✓"))
	}

	for _, advisory := range report.Decision.Advisories {
		fmt.Printf("  %s %s\n", gray("•"), advisory)
	}

	if report.Breaker.State == types.BreakerTripped {
		fmt.Printf("\n%s Circuit breaker tripped (%d consecutive blocked runs)\n",
			red("🚨"), report.Breaker.ConsecutiveFailures)
		fmt.Printf("  %s\n", gray("Run 'gatekeeper reset --task "+report.TaskKey+"' after addressing the failures."))
	} else if report.Breaker.ConsecutiveFailures > 0 {
		fmt.Printf("\n%s %d consecutive blocked run(s)\n", yellow("⚠"), report.Breaker.ConsecutiveFailures)
	}

	if report.Escalation.Action != types.ActionProceed {
		fmt.Printf("\n%s Escalation: %s\n", yellow("⚠"), report.Escalation.Action)
		fmt.Printf("  %s\n", report.Escalation.Reason)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runTask, "task", "", "Task key the run verifies (required)")
	runCmd.Flags().StringSliceVar(&runScopeFiles, "scope-files", nil, "Changed files for scope classification (default: git diff)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent check limit (default: from config)")
	runCmd.Flags().BoolVar(&runHuman, "human", false, "Human-readable output instead of JSON")
	runCmd.Flags().BoolVar(&runInteractive, "interactive", false, "Prompt before proceeding past confirmation requirements")
	runCmd.Flags().BoolVar(&runConfirm, "confirm", false, "Treat the run as explicitly confirmed by a human")
	_ = runCmd.MarkFlagRequired("task")
}

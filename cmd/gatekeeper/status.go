package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/breaker"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

var statusTask string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show circuit breaker state for a task",
	Long:  `Display the failure streak and circuit breaker state for a task key.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open gate database: %v\n", err)
			os.Exit(2)
		}
		defer store.Close()

		tracker, err := breaker.NewTracker(store, cfg.BreakerThreshold)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		streak, state, err := tracker.Status(ctx, statusTask)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\nTask: %s\n", statusTask)
		if state == types.BreakerTripped {
			fmt.Printf("  %s Circuit breaker TRIPPED (%d/%d consecutive blocked runs)\n",
				red("🚨"), streak.ConsecutiveFailures, tracker.Threshold())
			fmt.Printf("  %s\n", gray("Automatic attempts are refused until 'gatekeeper reset' or a passing run."))
		} else if streak.ConsecutiveFailures > 0 {
			fmt.Printf("  %s %d/%d consecutive blocked runs\n",
				color.New(color.FgYellow).SprintFunc()("⚠"), streak.ConsecutiveFailures, tracker.Threshold())
		} else {
			fmt.Printf("  %s No failure streak\n", green("✓"))
		}
		if !streak.LastUpdated.IsZero() {
			fmt.Printf("  Last updated: %s\n", streak.LastUpdated.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusTask, "task", "", "Task key to inspect (required)")
	_ = statusCmd.MarkFlagRequired("task")
}

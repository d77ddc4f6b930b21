package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/breaker"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/events"
)

var resetTask string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the circuit breaker for a task",
	Long: `Clear the failure streak for a task key.

This is the explicit human override out of the tripped state. Use it after
addressing whatever kept the gate blocked; a passing run clears the streak
on its own.`,
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

		if _, err := tracker.Reset(ctx, resetTask); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		event := events.New(events.EventTypeBreakerReset, "", resetTask,
			events.SeverityInfo, "Circuit breaker reset by explicit override", nil)
		if err := store.StoreEvent(ctx, event); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record reset event: %v\n", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Circuit breaker reset for task %s\n", green("✓"), resetTask)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetTask, "task", "", "Task key to reset (required)")
	_ = resetCmd.MarkFlagRequired("task")
}

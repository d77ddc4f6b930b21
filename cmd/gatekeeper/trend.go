package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	trendTask  string
	trendLimit int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show recent gate run history for a task",
	Long: `Display recent gate runs for a task key, newest first.

Useful for spotting whether a task is converging (fewer blocking failures
per run) or stuck (repeated blocked runs heading for the circuit breaker).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open gate database: %v\n", err)
			os.Exit(2)
		}
		defer store.Close()

		runs, err := store.RecentRuns(ctx, trendTask, trendLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\nRecent gate runs for %s:\n\n", trendTask)
		if len(runs) == 0 {
			fmt.Printf("  %s\n\n", gray("No runs recorded"))
			return
		}

		blocked := 0
		for _, run := range runs {
			icon := green("✓")
			switch run.Status {
			case "blocked":
				icon = red("✗")
				blocked++
			case "warned":
				icon = yellow("⚠")
			case "halted":
				icon = red("■")
			}

			fmt.Printf("  %s %-8s %s  %d checks, %d blocking, %d warnings  %s\n",
				icon, run.Status,
				run.CreatedAt.Format("2006-01-02 15:04:05"),
				run.CheckCount, run.BlockingCount, run.WarningCount,
				gray((time.Duration(run.DurationMs)*time.Millisecond).String()))
		}

		fmt.Printf("\n  %d of last %d runs blocked\n\n", blocked, len(runs))
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
	trendCmd.Flags().StringVar(&trendTask, "task", "", "Task key to inspect (required)")
	trendCmd.Flags().IntVar(&trendLimit, "limit", 10, "Maximum runs to show")
	_ = trendCmd.MarkFlagRequired("task")
}

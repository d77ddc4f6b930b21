package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/config"
	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/storage"
)

var (
	workDir    string
	dbPath     string
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "Quality gate runner for AI coding workflows",
	Long: `Gatekeeper runs a project's quality checks as one gate, decides whether
the change may proceed, and tracks repeated failures per task so stuck
work gets escalated instead of retried forever.

A gate run executes every registered check (lint, tests, build, security,
bundle) in one pass, maps exit codes to outcomes, and derives a single
decision: pass, warned, or blocked. Three consecutive blocked runs trip a
circuit breaker that refuses further automatic attempts until a human
steps in.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if workDir == "" {
			workDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
		}

		if configPath == "" {
			configPath = filepath.Join(workDir, "gatekeeper.yaml")
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		return nil
	},
}

// openStore opens the gate database under the working directory unless an
// absolute path was configured.
func openStore() (*storage.SQLiteStorage, error) {
	path := cfg.DBPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	return storage.New(path)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to gate database (default: .gatekeeper/gate.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to gatekeeper.yaml (default: <dir>/gatekeeper.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

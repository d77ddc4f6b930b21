package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check gatekeeper configuration and tool availability",
	Long: `Diagnose the gate setup for the current project.

This command reports:
- Where checks come from (gatekeeper.yaml or auto-detection)
- Which checks resolved to a runnable command
- Whether each command's binary is on PATH
- Whether the gate database can be opened

Exit codes:
  0 - every resolved check is runnable
  1 - one or more checks will be skipped or cannot run`,
	Run: func(cmd *cobra.Command, args []string) {
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("Checking gate setup for %s\n\n", cyan(workDir))

		source := "auto-detected from project layout"
		if len(cfg.Checks) > 0 {
			source = "configured in " + configPath
		}
		fmt.Printf("%s Check source: %s\n\n", gray("→"), source)

		reg, err := buildRegistry()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}

		problems := 0
		for _, desc := range reg.Descriptors() {
			if len(desc.Command) == 0 {
				fmt.Printf("  %s %-10s not detected, will be skipped\n", yellow("⚠"), desc.ID)
				problems++
				continue
			}

			if _, err := exec.LookPath(desc.Command[0]); err != nil {
				fmt.Printf("  %s %-10s %s %s\n", red("✗"), desc.ID,
					strings.Join(desc.Command, " "), red("(binary not on PATH)"))
				problems++
				continue
			}

			fmt.Printf("  %s %-10s %s %s\n", green("✓"), desc.ID,
				strings.Join(desc.Command, " "),
				gray(fmt.Sprintf("[%s, timeout %s]", desc.Class, desc.EffectiveTimeout())))
		}
		if reg.Len() == 0 {
			fmt.Printf("  %s No checks resolved; gate runs will pass with a coverage advisory\n", yellow("⚠"))
			problems++
		}
		fmt.Println()

		fmt.Printf("%s Gate database\n", gray("→"))
		store, err := openStore()
		if err != nil {
			fmt.Printf("  %s Cannot open database: %v\n", red("✗"), err)
			os.Exit(1)
		}
		store.Close()
		fmt.Printf("  %s %s\n\n", green("✓"), cfg.DBPath)

		if problems > 0 {
			fmt.Printf("%s %d potential issue(s) found\n", yellow("⚠"), problems)
			os.Exit(1)
		}
		fmt.Printf("%s All checks runnable\n", green("✓"))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

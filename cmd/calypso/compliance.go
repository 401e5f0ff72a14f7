package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/compliance"
	"github.com/serialcables/calypso/internal/db"
)

var complianceCmd = &cobra.Command{
	Use:   "compliance [metrics.json]",
	Short: "Score link metrics against PCIe 6.x limits",
	Long: `Score observed metrics from a completed test run against the PCIe 6.x
specification limits and report violations.

The metrics file is JSON with the fields reset_recovery_times,
retrain_times, error_counts, and ltssm_transitions.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCompliance,
}

func init() {
	complianceCmd.Flags().Bool("json", false, "Output as JSON")
	complianceCmd.Flags().Bool("save", false, "Save the report to the history database")
}

func runCompliance(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")

	cfg := loadConfig()

	data, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var metrics compliance.Metrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid metrics file: %v\n", err)
		os.Exit(1)
	}

	report := compliance.Score(metrics, cfg.Thresholds.Compliance)

	if save {
		database, err := db.New(cfg.History.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		} else {
			defer database.Close()
			if err := database.SaveReport("", report); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save report: %v\n", err)
			}
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
	} else {
		printReport(report)
	}

	if !report.OverallCompliant {
		os.Exit(2)
	}
}

func printReport(report *compliance.Report) {
	symbol := "✓"
	verdict := "COMPLIANT"
	if !report.OverallCompliant {
		symbol = "✗"
		verdict = "NON-COMPLIANT"
	}
	fmt.Printf("\n%s %s — score %.1f\n", symbol, verdict, compliance.Round1(report.Score))
	fmt.Printf("  Report %s, generated %s\n\n", report.ID, report.GeneratedAt.Format("2006-01-02 15:04:05"))

	names := make([]string, 0, len(report.ComponentScores))
	for name := range report.ComponentScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %5.1f\n", name, compliance.Round1(report.ComponentScores[name]))
	}

	if len(report.Violations) == 0 {
		return
	}
	fmt.Printf("\nViolations:\n")
	for _, v := range report.Violations {
		marker := "⚠"
		if v.Severity == compliance.SeverityHigh {
			marker = "✗"
		}
		fmt.Printf("  %s [%s] %s %s\n", marker, strings.ToUpper(string(v.Severity)), v.Section, v.Requirement)
		fmt.Printf("      required %s, observed %s\n", v.Specification, v.Actual)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse <command> [file]",
	Short: "Normalize one raw device response",
	Long: `Parse a captured device response for one command and print the typed
record. Supported commands: ` + strings.Join(parser.Commands(), ", ") + `.

Reads the raw response from the file argument or stdin.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runParse,
}

func init() {
	parseCmd.Flags().Bool("json", false, "Output as JSON")
}

func runParse(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")

	command, err := parser.ParseCommand(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := readInput(args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	record, err := parser.Parse(command, string(data))
	if err != nil {
		if errors.Is(err, parser.ErrNoData) {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(record)
		return
	}

	printRecord(command, record)
}

func printRecord(command parser.Command, record any) {
	switch rec := record.(type) {
	case map[int]parser.CounterRow:
		printCounterRows(rec, nil)
	case *parser.ShowPort:
		fmt.Printf("showport: %d ports in %d groups", len(rec.AllPorts()), len(rec.Groups))
		if rec.Atlas3Version != "" {
			fmt.Printf(" (firmware %s)", rec.Atlas3Version)
		}
		fmt.Println()
		for _, w := range rec.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	case *parser.ClkRecord:
		if rec.Source != "" {
			fmt.Printf("Clock source: %s\n", rec.Source)
		}
		for idx, status := range rec.Groups {
			fmt.Printf("  Port group %d: %s\n", idx, status)
		}
	case *parser.SpreadRecord:
		state := "disabled"
		if rec.Enabled {
			state = "enabled"
		}
		fmt.Printf("Spread spectrum: %s (%.2f%%)\n", state, rec.Percentage)
	case *parser.ShowModeRecord:
		fmt.Printf("Mode: %s\n", rec.Mode)
		if rec.Description != "" {
			fmt.Printf("  %s\n", rec.Description)
		}
	case bool:
		if rec {
			fmt.Println("✓ counters reset acknowledged")
		} else {
			fmt.Println("✗ counters reset not acknowledged")
		}
	default:
		fmt.Printf("%s: %+v\n", command, record)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/counters"
	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/topology"
)

var countersCmd = &cobra.Command{
	Use:   "counters [file]",
	Short: "Parse error counters and flag critical ports",
	Long: `Parse a captured counters response, compute per-port deltas against an
optional previous capture, and flag ports over the critical threshold.

With --showport the counter view is filtered to the active-port set derived
from that topology capture; without one, the configured fallback set
applies.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCounters,
}

func init() {
	countersCmd.Flags().Bool("json", false, "Output as JSON")
	countersCmd.Flags().String("previous", "", "previous counters capture for delta computation")
	countersCmd.Flags().String("showport", "", "showport capture used to derive the active-port set")
	countersCmd.Flags().Bool("all-ports", false, "skip active-port filtering entirely")
}

func runCounters(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	prevFile, _ := cmd.Flags().GetString("previous")
	showportFile, _ := cmd.Flags().GetString("showport")
	allPorts, _ := cmd.Flags().GetBool("all-ports")

	cfg := loadConfig()

	data, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	current, err := parser.ParseCounters(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	active := topology.ActiveSet{}
	if !allPorts {
		src := topology.Sources{Fallback: cfg.FallbackActivePorts}
		if showportFile != "" {
			spData, err := os.ReadFile(showportFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			sp, err := parser.ParseShowPort(string(spData))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			src.ShowPort = sp
		}
		active = topology.DeriveActiveSet(src)
	}

	agg := counters.New(cfg.Thresholds.CriticalErrorCount)
	if prevFile != "" {
		prevData, err := os.ReadFile(prevFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		previous, err := parser.ParseCounters(string(prevData))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: previous capture unusable: %v\n", err)
		} else {
			agg.Apply(previous, active)
		}
	}

	result := agg.Apply(current, active)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
		return
	}

	if active.Source == topology.SourceFallback {
		fmt.Fprintf(os.Stderr, "Warning: no topology source, assuming fallback ports %v active\n", active.Ports())
	}
	printCountersResult(result)
}

func printCountersResult(result counters.Result) {
	rows := make(map[int]parser.CounterRow, len(result.Ports))
	for port, st := range result.Ports {
		rows[port] = st.Row
	}
	printCounterRows(rows, &result)

	if result.Filtered > 0 {
		fmt.Printf("\n%d port(s) outside the active set dropped\n", result.Filtered)
	}
	if crit := result.CriticalPorts(); len(crit) > 0 {
		names := make([]string, len(crit))
		for i, p := range crit {
			names[i] = fmt.Sprintf("%d (%s)", p, topology.PortName(p))
		}
		fmt.Printf("✗ Critical ports: %s\n", strings.Join(names, ", "))
	}
}

func printCounterRows(rows map[int]parser.CounterRow, result *counters.Result) {
	ports := make([]int, 0, len(rows))
	for p := range rows {
		ports = append(ports, p)
	}
	sort.Ints(ports)

	fmt.Printf("%-6s %-18s %8s %8s %8s %8s %8s %8s %8s\n",
		"Port", "Location", "RX", "BadTLP", "BadDLLP", "RecDiag", "LinkDn", "Flit", "Total")
	for _, p := range ports {
		r := rows[p]
		marker := " "
		if result != nil && result.Ports[p].Critical {
			marker = "✗"
		}
		fmt.Printf("%-6d %-18s %8d %8d %8d %8d %8d %8d %8d %s\n",
			p, topology.PortName(p), r.PortRx, r.BadTLP, r.BadDLLP, r.RecDiag, r.LinkDown, r.FlitError, r.Total, marker)

		if result != nil {
			if d := result.Ports[p].Delta; d != nil {
				var parts []string
				for _, field := range append(parser.CounterFields, parser.FieldTotal) {
					if v, ok := d[field]; ok {
						parts = append(parts, fmt.Sprintf("%s +%d", field, v))
					}
				}
				fmt.Printf("       └ since last poll: %s\n", strings.Join(parts, ", "))
			}
		}
	}
}

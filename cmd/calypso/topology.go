package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/topology"
)

var topologyCmd = &cobra.Command{
	Use:   "topology [file]",
	Short: "Build the port topology from a showport capture",
	Args:  cobra.MaximumNArgs(1),
	Run:   runTopology,
}

func init() {
	topologyCmd.Flags().Bool("json", false, "Output as JSON")
	topologyCmd.Flags().Bool("all", false, "include groups with no active ports")
}

func runTopology(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	showAll, _ := cmd.Flags().GetBool("all")

	data, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sp, err := parser.ParseShowPort(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	topo := topology.Build(sp)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(topo)
		return
	}

	printTopology(topo, showAll)
}

func printTopology(topo *topology.Topology, showAll bool) {
	fmt.Printf("Atlas switch topology")
	if topo.Atlas3Version != "" {
		fmt.Printf(" (firmware %s)", topo.Atlas3Version)
	}
	fmt.Println()
	fmt.Printf("  Ports: %d active / %d total\n", topo.ActivePorts, topo.TotalPorts)
	if topo.MaxSpeed != parser.GenUnknown {
		fmt.Printf("  Max speed detected: %s (%.1f GT/s)\n", topo.MaxSpeed, topo.MaxSpeed.GTps())
	}
	if topo.HostSpeed != parser.GenUnknown {
		bw := topo.HostSpeed.LaneGBps() * float64(topo.HostWidth)
		fmt.Printf("  Host link: %s x%d (%.1f GB/s)\n", topo.HostSpeed, topo.HostWidth, bw)
	}
	fmt.Println()

	groups := topo.ActiveGroups()
	if showAll {
		groups = nil
		for _, name := range append(topology.GroupNames(), topology.UnknownPortName) {
			if g, ok := topo.Groups[name]; ok {
				groups = append(groups, g)
			}
		}
	}

	for _, g := range groups {
		fmt.Printf("%s (%s): %d/%d active\n", g.Name, g.Range, g.ActivePorts, len(g.Ports))
		for _, p := range g.Ports {
			if !p.Active() && !showAll {
				continue
			}
			if p.Status == parser.StatusIdle {
				fmt.Printf("  %3d  idle\n", p.PortNumber)
				continue
			}
			fmt.Printf("  %3d  %-10s %s x%d\n", p.PortNumber, p.Status, p.CurrentSpeed, p.CurrentWidth)
		}
	}

	for _, w := range topo.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
}

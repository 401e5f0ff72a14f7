package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [devices.json]",
	Short: "Filter a host device list for a test run",
	Long: `Classify a flat PCI device list: identify the Atlas switch, exclude
bridges and other switches, and keep only devices downstream of the switch
as testable endpoints.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDiscover,
}

func init() {
	discoverCmd.Flags().Bool("json", false, "Output as JSON")
}

func runDiscover(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")

	data, err := readInput(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var devices []discovery.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid device list: %v\n", err)
		os.Exit(1)
	}

	result := discovery.Filter(devices)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
		return
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if !result.Atlas3Found {
		fmt.Println("⚠ No Atlas switch found in device list")
	}

	fmt.Printf("Testable devices: %d\n", len(result.Filtered))
	for _, d := range result.Filtered {
		fmt.Printf("  ✓ %s  %s (%s)\n", d.BusID, d.DeviceName, d.Description)
	}
	fmt.Printf("Excluded: %d\n", len(result.Excluded))
	for _, e := range result.Excluded {
		fmt.Printf("  - %s  %s: %s\n", e.Device.BusID, e.Device.DeviceName, e.Reason)
	}
}

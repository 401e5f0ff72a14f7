package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/config"
	"github.com/serialcables/calypso/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "calypso",
	Short: "Atlas PCIe switch diagnostic console",
	Long: `Calypso is a diagnostic tool for Atlas 3 PCIe switches. It normalizes
captured device responses (counters, showport, clk, spread, showmode) into
typed records, tracks per-port error counters across polls, scores link
quality against PCIe 6.x limits, and filters host device lists for test
runs.

The device transport is out of scope: commands read captured response text
or result-envelope JSON from files or stdin.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/calypso/config.yaml)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(topologyCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(complianceCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// readInput returns the contents of the file argument, or stdin when no
// argument was given.
func readInput(args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

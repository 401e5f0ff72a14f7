package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/compliance"
	"github.com/serialcables/calypso/internal/db"
	"github.com/serialcables/calypso/internal/topology"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent polls, reports, and alerts",
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().Bool("json", false, "Output as JSON")
	historyCmd.Flags().Int("limit", 20, "maximum entries per section")
	historyCmd.Flags().Bool("alerts-only", false, "show only unacknowledged alerts")
	historyCmd.Flags().Int64("ack", 0, "acknowledge the alert with this id and exit")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")
	alertsOnly, _ := cmd.Flags().GetBool("alerts-only")
	ackID, _ := cmd.Flags().GetInt64("ack")

	cfg := loadConfig()
	database, err := db.New(cfg.History.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if ackID > 0 {
		if err := database.AcknowledgeAlert(ackID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ alert %d acknowledged\n", ackID)
		return
	}

	var polls []*db.PollRow
	var reports []*compliance.Report
	var alerts []*db.Alert

	if alertsOnly {
		alerts, err = database.GetUnacknowledgedAlerts()
	} else {
		if polls, err = database.ListPolls(limit); err == nil {
			if reports, err = database.ListReports(limit); err == nil {
				alerts, err = database.ListAlerts(limit)
			}
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(map[string]any{"polls": polls, "reports": reports, "alerts": alerts})
		return
	}

	if len(polls) > 0 {
		fmt.Println("Recent polls:")
		for _, p := range polls {
			marker := " "
			if p.Critical {
				marker = "✗"
			}
			fmt.Printf("  %s port %-4d %-18s %6d errors  %s\n",
				marker, p.Port, topology.PortName(p.Port), p.Total, humanize.Time(p.Timestamp))
		}
		fmt.Println()
	}

	if len(reports) > 0 {
		fmt.Println("Compliance reports:")
		for _, r := range reports {
			symbol := "✓"
			if !r.OverallCompliant {
				symbol = "✗"
			}
			fmt.Printf("  %s %.1f  %d violation(s)  %s  %s\n",
				symbol, compliance.Round1(r.Score), len(r.Violations), r.ID, humanize.Time(r.GeneratedAt))
		}
		fmt.Println()
	}

	if len(alerts) > 0 {
		fmt.Println("Alerts:")
		for _, a := range alerts {
			ack := " "
			if a.Acknowledged {
				ack = "·"
			}
			fmt.Printf("  %s [%s] #%d %s (%s)\n", ack, a.Severity, a.ID, a.Message, humanize.Time(a.Timestamp))
		}
	}

	if len(polls) == 0 && len(reports) == 0 && len(alerts) == 0 {
		fmt.Println("No history recorded yet")
	}
}

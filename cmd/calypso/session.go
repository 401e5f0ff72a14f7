package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/serialcables/calypso/internal/db"
	"github.com/serialcables/calypso/internal/parser"
	"github.com/serialcables/calypso/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session <dir>",
	Short: "Replay captured result envelopes through a dashboard session",
	Long: `Replay a directory of result-envelope JSON files (one response per file)
through a session in timestamp order, as the live console would receive
them. Counter polls and critical-port alerts are recorded to the history
database unless --no-record is given.`,
	Args: cobra.ExactArgs(1),
	Run:  runSession,
}

func init() {
	sessionCmd.Flags().Bool("json", false, "Output as JSON")
	sessionCmd.Flags().Bool("no-record", false, "do not write polls and alerts to the history database")
}

type replayEnvelope struct {
	path string
	env  *parser.Envelope
}

func runSession(cmd *cobra.Command, args []string) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	cfg := loadConfig()

	envelopes, err := loadEnvelopes(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(envelopes) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no result envelopes in %s\n", args[0])
		os.Exit(2)
	}

	var database *db.DB
	if !noRecord {
		database, err = db.New(cfg.History.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		} else {
			defer database.Close()
		}
	}

	sess := session.New(cfg)
	applied, failed := 0, 0

	for _, re := range envelopes {
		up, err := sess.ApplyResult(re.env)
		if err != nil {
			failed++
			level := "Error"
			if errors.Is(err, parser.ErrNoData) {
				level = "Warning"
			}
			fmt.Fprintf(os.Stderr, "%s: %s: %v\n", level, filepath.Base(re.path), err)
			continue
		}
		applied++

		for _, w := range up.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", filepath.Base(re.path), w)
		}

		if up.Counters == nil || database == nil {
			continue
		}
		ts := re.env.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if err := database.RecordPoll(sess.ID, ts, *up.Counters); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record poll: %v\n", err)
		}
		for _, port := range up.Counters.CriticalPorts() {
			st := up.Counters.Ports[port]
			database.CreateAlertWithDetails("critical", "port_errors",
				fmt.Sprintf("Port %d exceeded error threshold (%d errors)", port, st.Row.Total),
				map[string]any{"port": port, "total": st.Row.Total, "session": sess.ID})
		}
	}

	if jsonOut {
		printSessionJSON(sess, applied, failed)
		return
	}
	printSessionSummary(sess, applied, failed)
}

// loadEnvelopes reads every .json file in dir and orders the decoded
// envelopes by timestamp, falling back to file-name order for captures
// without one.
func loadEnvelopes(dir string) ([]replayEnvelope, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var out []replayEnvelope
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		env, err := parser.DecodeEnvelope(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s skipped: %v\n", entry.Name(), err)
			continue
		}
		out = append(out, replayEnvelope{path: path, env: env})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].env.Timestamp.Before(out[j].env.Timestamp)
	})
	return out, nil
}

func printSessionSummary(sess *session.Session, applied, failed int) {
	fmt.Printf("\nSession %s: %d responses applied, %d failed\n", sess.ID, applied, failed)

	if topo := sess.Topology(); topo != nil {
		fmt.Printf("  Topology: %d active / %d total ports", topo.ActivePorts, topo.TotalPorts)
		if topo.MaxSpeed != 0 {
			fmt.Printf(", max %s", topo.MaxSpeed)
		}
		fmt.Println()
	}

	active := sess.ActivePorts()
	fmt.Printf("  Active ports (%s): %v\n", active.Source, active.Ports())

	if mode := sess.Mode(); mode != nil {
		fmt.Printf("  Mode: %s\n", mode.Mode)
	}
	if spread := sess.Spread(); spread != nil {
		state := "disabled"
		if spread.Enabled {
			state = "enabled"
		}
		fmt.Printf("  Spread spectrum: %s\n", state)
	}
}

func printSessionJSON(sess *session.Session, applied, failed int) {
	summary := map[string]any{
		"session_id":    sess.ID,
		"applied":       applied,
		"failed":        failed,
		"active_ports":  sess.ActivePorts().Ports(),
		"active_source": sess.ActivePorts().Source,
		"topology":      sess.Topology(),
		"mode":          sess.Mode(),
		"spread":        sess.Spread(),
		"clk":           sess.Clk(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(summary)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hostops/terminate/internal/config"
	"github.com/hostops/terminate/internal/eventlog"
	"github.com/hostops/terminate/internal/style"
	"github.com/hostops/terminate/internal/ui"
)

// History command flags
var (
	historyTail   int
	historyType   string
	historyTarget string
	historyRun    string
	historySince  string
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent kills, tags and runs",
	Long: `Show entries from the event log written by each run.

Event types:
  run_start    - a run passed validation
  kill         - a process was terminated
  tag          - a process was reported to inventory
  skip         - a process was too young, or could not be evaluated
  fail         - killing or tagging a process failed
  run_complete - a run finished

--type run selects run_start and run_complete.`,
	Example: `  terminate history                  # last 20 events
  terminate history -n 100 --type kill
  terminate history --since 24h --target notepad
  terminate history --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyTail, "tail", "n", 20, "Number of events to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyType, "type", "t", "", "Filter by event type (kill,tag,skip,fail,run)")
	historyCmd.Flags().StringVar(&historyTarget, "target", "", "Filter by process name prefix")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Filter by run ID prefix")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Show events since duration (e.g., 1h, 30m, 24h)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	filter := eventlog.Filter{Run: historyRun}
	if historyType != "" {
		types, err := parseEventTypes(historyType)
		if err != nil {
			return err
		}
		filter.Types = types
	}
	if historyTarget != "" {
		// Match the way targets are stored.
		filter.Target = strings.ToLower(strings.TrimSpace(historyTarget))
	}
	if historySince != "" {
		duration, err := time.ParseDuration(historySince)
		if err != nil {
			return fmt.Errorf("invalid --since duration: %w", err)
		}
		filter.Since = time.Now().Add(-duration)
	}

	events, err := eventlog.ReadEvents(cfg.Log.Dir)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	events = eventlog.Tail(eventlog.FilterEvents(events, filter), historyTail)

	out := cmd.OutOrStdout()
	if historyJSON {
		if events == nil {
			events = []eventlog.Event{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	if len(events) == 0 {
		fmt.Fprintf(out, "%s No events in %s\n", style.Dim.Render("○"), eventlog.Path(cfg.Log.Dir))
		return nil
	}

	tbl := style.NewTable(
		style.Column{Name: "TIME", Width: 19},
		style.Column{Name: "", Width: 1},
		style.Column{Name: "TYPE", Width: 12},
		style.Column{Name: "RUN", Width: 8},
		style.Column{Name: "TARGET", Width: 24},
		style.Column{Name: "DETAIL"},
	)
	for _, e := range events {
		tbl.AddRow(
			style.Dim.Render(e.Timestamp.Format("2006-01-02 15:04:05")),
			ui.EventIcon(string(e.Type)),
			ui.RenderEventType(string(e.Type)),
			shortRun(e.Run),
			e.Target,
			e.Describe(),
		)
	}
	fmt.Fprint(out, tbl.Render())
	return nil
}

// parseEventTypes maps a --type value to event types. "run" selects both
// lifecycle events.
func parseEventTypes(s string) ([]eventlog.EventType, error) {
	var types []eventlog.EventType
	for _, part := range strings.Split(s, ",") {
		switch t := eventlog.EventType(strings.ToLower(strings.TrimSpace(part))); t {
		case "run":
			types = append(types, eventlog.RunTypes...)
		case eventlog.EventRunStart, eventlog.EventRunComplete,
			eventlog.EventKill, eventlog.EventTag, eventlog.EventSkip, eventlog.EventFail:
			types = append(types, t)
		case "":
		default:
			return nil, fmt.Errorf("unknown event type %q (want kill, tag, skip, fail or run)", part)
		}
	}
	return types, nil
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

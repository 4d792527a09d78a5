package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hostops/terminate/internal/config"
	"github.com/hostops/terminate/internal/diag"
	"github.com/hostops/terminate/internal/eventlog"
	"github.com/hostops/terminate/internal/lock"
	"github.com/hostops/terminate/internal/style"
	"github.com/hostops/terminate/internal/ui"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the run lock and log locations",
	Long: `Show where terminate writes its logs, whether a run currently holds the
run lock, and how the last run ended.

Exits 1 when another run holds the lock.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}

// StatusReport is the output of terminate status.
type StatusReport struct {
	Config      string          `json:"config,omitempty"`
	LogDir      string          `json:"log_dir"`
	DiagLog     string          `json:"diag_log"`
	EventLog    string          `json:"event_log"`
	LockEnabled bool            `json:"lock_enabled"`
	LockPath    string          `json:"lock_path"`
	Lock        string          `json:"lock"`
	Held        bool            `json:"held"`
	Owner       *lock.LockInfo  `json:"owner,omitempty"`
	LastRun     *eventlog.Event `json:"last_run,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rl := lock.New(cfg.Lock.Dir)
	rep := StatusReport{
		Config:      cfg.Source,
		LogDir:      cfg.Log.Dir,
		DiagLog:     diag.LogPath(cfg.Log.Dir),
		EventLog:    eventlog.Path(cfg.Log.Dir),
		LockEnabled: cfg.LockEnabled(),
		LockPath:    rl.Path(),
		Lock:        rl.Status(),
	}
	rep.Held, _ = rl.Held()
	if rep.Held {
		rep.Owner, _ = rl.Read()
	}

	events, err := eventlog.ReadEvents(cfg.Log.Dir)
	if err != nil {
		style.PrintWarning(cmd.ErrOrStderr(), "event log unreadable: %v", err)
	}
	last := eventlog.Tail(eventlog.FilterEvents(events, eventlog.Filter{
		Types: []eventlog.EventType{eventlog.EventRunComplete},
	}), 1)
	if len(last) == 1 {
		rep.LastRun = &last[0]
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printStatus(out, rep)
	}

	if rep.Held && (rep.Owner == nil || !rep.Owner.IsStale()) {
		return exitStatus(1)
	}
	return nil
}

func printStatus(w io.Writer, rep StatusReport) {
	source := rep.Config
	if source == "" {
		source = style.Dim.Render("(built-in defaults)")
	}
	fmt.Fprintf(w, "%s\n", ui.RenderCategory("terminate"))
	fmt.Fprintf(w, "  config     %s\n", source)
	fmt.Fprintf(w, "  diag log   %s\n", rep.DiagLog)
	fmt.Fprintf(w, "  event log  %s\n", rep.EventLog)

	var lockLine string
	switch {
	case !rep.LockEnabled:
		lockLine = style.Dim.Render("disabled")
	case rep.Held:
		lockLine = ui.RenderWarn(rep.Lock)
	default:
		lockLine = ui.RenderPass(rep.Lock)
	}
	fmt.Fprintf(w, "  run lock   %s %s\n", lockLine, style.Dim.Render(rep.LockPath))

	if rep.LastRun != nil {
		fmt.Fprintf(w, "  last run   %s %s %s\n",
			rep.LastRun.Timestamp.Format("2006-01-02 15:04:05"), rep.LastRun.Target, rep.LastRun.Describe())
	} else {
		fmt.Fprintf(w, "  last run   %s\n", style.Dim.Render("none recorded"))
	}
}

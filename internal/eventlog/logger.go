// Package eventlog records one line per run lifecycle event and disposition.
//
// The log is plain text so operators can read it directly; ReadEvents parses
// it back for the history command.
package eventlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hostops/terminate/internal/constants"
)

// EventType represents the type of event.
type EventType string

const (
	// EventRunStart indicates a run passed validation and began acquiring targets.
	EventRunStart EventType = "run_start"
	// EventKill indicates a target was terminated.
	EventKill EventType = "kill"
	// EventTag indicates a target was reported to the inventory agent.
	EventTag EventType = "tag"
	// EventSkip indicates a target was too young to act on.
	EventSkip EventType = "skip"
	// EventFail indicates a target's action failed.
	EventFail EventType = "fail"
	// EventRunComplete indicates a run finished.
	EventRunComplete EventType = "run_complete"
)

// RunTypes are the lifecycle event types, as opposed to per-target ones.
var RunTypes = []EventType{EventRunStart, EventRunComplete}

const timeLayout = "2006-01-02 15:04:05"

// Event represents a single logged event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Run       string    `json:"run,omitempty"`     // run ID
	Target    string    `json:"target,omitempty"`  // normalized process name
	Context   string    `json:"context,omitempty"` // pid, age, error text

	// Detail is the human-readable tail of a parsed line.
	Detail string `json:"detail,omitempty"`
}

// Describe returns the human-readable detail for the event.
func (e Event) Describe() string {
	if e.Detail != "" {
		return e.Detail
	}
	return describe(e)
}

// Logger appends events to the event log file.
type Logger struct {
	logPath string
	mu      sync.Mutex

	// RunID is stamped on events that do not carry their own.
	RunID string

	// Now returns the event timestamp. Nil means time.Now.
	Now func() time.Time
}

// Path returns the event log location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.FileEventLog)
}

// NewLogger creates a Logger writing to the event log in dir.
func NewLogger(dir, runID string) *Logger {
	return &Logger{logPath: Path(dir), RunID: runID}
}

// LogEvent appends a single event.
func (l *Logger) LogEvent(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Run == "" {
		event.Run = l.RunID
	}

	if err := os.MkdirAll(filepath.Dir(l.logPath), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLogLine(event) + "\n"); err != nil {
		return fmt.Errorf("writing event log: %w", err)
	}
	return nil
}

// Log is a convenience method that creates an Event and logs it.
func (l *Logger) Log(eventType EventType, target, context string) error {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return l.LogEvent(Event{
		Timestamp: now(),
		Type:      eventType,
		Target:    target,
		Context:   context,
	})
}

// formatLogLine formats an event as a human-readable log line.
// Format: 2025-12-26 15:30:45 [kill] 6f1c... app.exe killed (pid 4120, age 36m)
func formatLogLine(e Event) string {
	return fmt.Sprintf("%s [%s] %s %s %s",
		e.Timestamp.Format(timeLayout), e.Type, field(e.Run), field(e.Target), describe(e))
}

func describe(e Event) string {
	var verb string
	ctx := e.Context
	switch e.Type {
	case EventRunStart:
		verb = "started"
	case EventKill:
		verb = "killed"
	case EventTag:
		verb = "tagged"
	case EventSkip:
		verb = "skipped"
	case EventFail:
		verb = "failed"
		ctx = truncate(ctx, 160)
	case EventRunComplete:
		verb = "complete"
	default:
		verb = string(e.Type)
	}
	if ctx == "" {
		return verb
	}
	return fmt.Sprintf("%s (%s)", verb, ctx)
}

// field renders a token that may be empty or contain spaces.
func field(s string) string {
	switch {
	case s == "":
		return "-"
	case strings.ContainsAny(s, " \t\"") || s == "-":
		return strconv.Quote(s)
	default:
		return s
	}
}

// truncate shortens s to at most maxLen runes, ending in "...".
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// ReadEvents reads all events from the event log in dir.
func ReadEvents(dir string) ([]Event, error) {
	content, err := os.ReadFile(Path(dir)) //nolint:gosec // G304: path is built from configured log dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // No log file yet
		}
		return nil, fmt.Errorf("reading event log: %w", err)
	}
	return ParseLogLines(string(content))
}

// ParseLogLines parses log lines back into Events, skipping malformed lines.
func ParseLogLines(content string) ([]Event, error) {
	var events []Event
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		event, err := parseLogLine(line)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// parseLogLine parses a single log line into an Event. Timestamps are read
// in local time, matching how they were written.
func parseLogLine(line string) (Event, error) {
	var event Event

	if len(line) < len(timeLayout)+1 {
		return event, fmt.Errorf("line too short")
	}
	ts, err := time.ParseInLocation(timeLayout, line[:len(timeLayout)], time.Local)
	if err != nil {
		return event, fmt.Errorf("parsing timestamp: %w", err)
	}
	event.Timestamp = ts

	rest := line[len(timeLayout)+1:]
	if len(rest) < 3 || rest[0] != '[' {
		return event, fmt.Errorf("missing event type")
	}
	closeBracket := strings.IndexByte(rest, ']')
	if closeBracket < 0 {
		return event, fmt.Errorf("unclosed bracket")
	}
	event.Type = EventType(rest[1:closeBracket])
	rest = strings.TrimPrefix(rest[closeBracket+1:], " ")

	if event.Run, rest, err = nextField(rest); err != nil {
		return event, fmt.Errorf("run: %w", err)
	}
	if event.Target, rest, err = nextField(rest); err != nil {
		return event, fmt.Errorf("target: %w", err)
	}
	event.Detail = rest
	return event, nil
}

func nextField(s string) (value, rest string, err error) {
	if s == "" {
		return "", "", fmt.Errorf("missing field")
	}
	if s[0] == '"' {
		quoted, err := strconv.QuotedPrefix(s)
		if err != nil {
			return "", "", err
		}
		value, _ = strconv.Unquote(quoted)
		return value, strings.TrimPrefix(s[len(quoted):], " "), nil
	}
	value, rest, _ = strings.Cut(s, " ")
	if value == "-" {
		value = ""
	}
	return value, rest, nil
}

// Tail returns the last n events. n <= 0 returns all of them.
func Tail(events []Event, n int) []Event {
	if n <= 0 || len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}

// Filter selects events.
type Filter struct {
	Types  []EventType // Any of these types (empty for all)
	Target string      // Target name prefix (empty for all)
	Run    string      // Run ID prefix (empty for all)
	Since  time.Time   // Not before this time (zero for all)
}

// FilterEvents applies a filter to events.
func FilterEvents(events []Event, f Filter) []Event {
	var result []Event
	for _, e := range events {
		if len(f.Types) > 0 && !hasType(f.Types, e.Type) {
			continue
		}
		if f.Target != "" && !strings.HasPrefix(e.Target, f.Target) {
			continue
		}
		if f.Run != "" && !strings.HasPrefix(e.Run, f.Run) {
			continue
		}
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func hasType(types []EventType, t EventType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

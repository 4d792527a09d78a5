// Package diag opens the diagnostics log shared by every component of a run.
//
// Lines go to the console and are appended to terminate.log in the log
// directory. There is no package-level logger: callers pass Log.Logger (or a
// child of it) to the components that need one.
package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostops/terminate/internal/constants"
)

// TimeFormat is the timestamp layout used on every diagnostics line.
const TimeFormat = "2006-01-02 15:04:05"

// Options configures Open.
type Options struct {
	// Dir is the directory holding terminate.log. Empty means os.TempDir().
	Dir string

	// Level is the minimum level written. Empty means info.
	Level string

	// Debug forces the debug level regardless of Level.
	Debug bool

	// RunID is stamped on every line as run=<id>.
	RunID string

	// Console receives the human-readable copy. Nil means os.Stdout.
	Console io.Writer

	// NoColor disables ANSI color on the console copy.
	NoColor bool
}

// Log is an open diagnostics log.
type Log struct {
	zerolog.Logger

	path string
	file *os.File
}

// Open creates the log directory if needed and opens terminate.log for append.
// If the file cannot be opened the returned Log still writes to the console
// and the error is returned alongside it.
func Open(opts Options) (*Log, error) {
	dir := opts.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	level := ParseLevel(opts.Level)
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{consoleWriter(console, opts.NoColor)}

	l := &Log{path: LogPath(dir)}
	var openErr error
	if err := os.MkdirAll(dir, 0755); err != nil {
		openErr = fmt.Errorf("creating log dir: %w", err)
	} else if f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
		openErr = fmt.Errorf("opening diagnostics log: %w", err)
	} else {
		l.file = f
		writers = append(writers, consoleWriter(f, true))
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp()
	if opts.RunID != "" {
		ctx = ctx.Str("run", opts.RunID)
	}
	l.Logger = ctx.Logger()
	return l, openErr
}

// LogPath returns the location of terminate.log inside dir.
func LogPath(dir string) string {
	return filepath.Join(dir, constants.FileDiagLog)
}

// Path returns the location of terminate.log.
func (l *Log) Path() string {
	return l.path
}

// Close flushes and closes the log file. The console copy is unaffected.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// give info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: TimeFormat,
		FormatTimestamp: func(i interface{}) string {
			if s, ok := i.(string); ok {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					return t.Local().Format(TimeFormat)
				}
				return s
			}
			return fmt.Sprint(i)
		},
	}
}

package diag

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	l, err := Open(Options{Dir: dir, RunID: "abc123", Console: &console, NoColor: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	l.Info().Msg("Terminate is starting")
	l.Debug().Msg("evaluating: app.exe")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "terminate.log"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	for name, out := range map[string]string{"console": console.String(), "file": string(data)} {
		if !strings.Contains(out, "Terminate is starting") {
			t.Errorf("%s missing message:\n%s", name, out)
		}
		if !strings.Contains(out, "run=abc123") {
			t.Errorf("%s missing run id:\n%s", name, out)
		}
		if strings.Contains(out, "evaluating") {
			t.Errorf("%s has debug line at info level:\n%s", name, out)
		}
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("file output contains ANSI escapes: %q", data)
	}
}

func TestOpen_DebugLevel(t *testing.T) {
	var console bytes.Buffer
	l, err := Open(Options{Dir: t.TempDir(), Debug: true, Console: &console, NoColor: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer l.Close()

	l.Debug().Msg("evaluating: app.exe")
	if !strings.Contains(console.String(), "evaluating: app.exe") {
		t.Errorf("debug line not written: %q", console.String())
	}
}

func TestOpen_AppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	for _, msg := range []string{"first run", "second run"} {
		l, err := Open(Options{Dir: dir, Console: &bytes.Buffer{}})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		l.Info().Msg(msg)
		l.Close()
	}

	data, _ := os.ReadFile(filepath.Join(dir, "terminate.log"))
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("log not appended:\n%s", data)
	}
}

func TestOpen_UnwritableDirStillLogsToConsole(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	var console bytes.Buffer

	l, err := Open(Options{Dir: filepath.Join(blocker, "sub"), Console: &console, NoColor: true})
	if err == nil {
		t.Fatal("Open() expected error for a dir under a regular file")
	}
	l.Info().Msg("still here")
	if !strings.Contains(console.String(), "still here") {
		t.Errorf("console output = %q", console.String())
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestClose_Nil(t *testing.T) {
	var l *Log
	if err := l.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}
}

package util

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestExecRun(t *testing.T) {
	ctx := context.Background()

	// Test successful command
	var err error
	if runtime.GOOS == "windows" {
		err = ExecRun(ctx, ".", "cmd", "/c", "exit /b 0")
	} else {
		err = ExecRun(ctx, ".", "true")
	}
	if err != nil {
		t.Fatalf("ExecRun failed: %v", err)
	}

	// Test command that fails
	if runtime.GOOS == "windows" {
		err = ExecRun(ctx, ".", "cmd", "/c", "exit /b 3")
	} else {
		err = ExecRun(ctx, ".", "sh", "-c", "exit 3")
	}
	if err == nil {
		t.Fatal("expected error for failing command")
	}
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}
}

func TestExecRun_WorkDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	tmpDir := t.TempDir()

	// The command writes relative to its working directory.
	if err := ExecRun(context.Background(), tmpDir, "sh", "-c", "echo hi > marker"); err != nil {
		t.Fatalf("ExecRun failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "marker")); err != nil {
		t.Errorf("expected marker in work dir: %v", err)
	}
}

func TestExecRun_StderrInError(t *testing.T) {
	var err error
	if runtime.GOOS == "windows" {
		err = ExecRun(context.Background(), ".", "cmd", "/c", "echo error message 1>&2 & exit /b 1")
	} else {
		err = ExecRun(context.Background(), ".", "sh", "-c", "echo 'error message' >&2; exit 1")
	}
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "error message") {
		t.Errorf("expected error to contain stderr, got %q", err.Error())
	}
}

func TestExecRun_MissingBinary(t *testing.T) {
	err := ExecRun(context.Background(), ".", filepath.Join(t.TempDir(), "no-such-binary"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if got := ExitCode(err); got != 127 {
		t.Errorf("ExitCode() = %d, want 127", got)
	}
}

func TestExecRun_ContextDeadline(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep(1)")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := ExecRun(ctx, ".", "sleep", "10"); err == nil {
		t.Fatal("expected error when deadline passes")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("ExecRun ignored the context deadline")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"other", errors.New("other"), 1},
		{"lookup failure", &exec.Error{Name: "miniscan.exe", Err: exec.ErrNotFound}, 127},
		{"path error", &fs.PathError{Op: "fork/exec", Path: "/opt/ldclient/miniscan.exe", Err: syscall.ENOENT}, 127},
		{"wrapped not exist", fmt.Errorf("starting: %w", fs.ErrNotExist), 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExecRun_MissingBinaryMessage(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "miniscan.exe")
	err := ExecRun(context.Background(), filepath.Dir(missing), missing)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !strings.Contains(err.Error(), "miniscan.exe exited 127") {
		t.Errorf("error = %q, want exit 127", err.Error())
	}
}

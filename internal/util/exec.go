// Package util provides small process and file helpers shared by terminate.
package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecRun runs a command in the specified directory and waits for it to exit.
// If the command fails, its exit code and stderr are included in the error.
// There is no timeout unless ctx carries one.
func ExecRun(ctx context.Context, workDir, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...) //nolint:gosec // G204: callers validate args
	c.Dir = workDir

	var stderr bytes.Buffer
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		name := filepath.Base(cmd)
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return fmt.Errorf("%s exited %d: %s: %w", name, ExitCode(err), errMsg, err)
		}
		return fmt.Errorf("%s exited %d: %w", name, ExitCode(err), err)
	}

	return nil
}

// ExitCode extracts a process exit code from an error returned by exec.
// A command that could not be started reports 127.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	// Lookup failures come back as *exec.Error; an explicit path that cannot
	// be started comes back as *fs.PathError from Start.
	var execErr *exec.Error
	var pathErr *fs.PathError
	if errors.As(err, &execErr) || errors.As(err, &pathErr) || errors.Is(err, fs.ErrNotExist) {
		return 127
	}
	return 1
}

// Package lock serializes terminate runs on a host.
//
// A scheduled task can fire while the previous run is still waiting on the
// inventory scanner. The run lock is an OS file lock on
// <dir>/terminate.lock, held for the life of the run. Next to it,
// terminate.owner records who holds it:
// - PID of the owning process
// - Timestamp when lock was acquired
// - Run ID
//
// The OS releases the file lock when the owner exits, so a leftover owner
// file with no lock holder is stale and is replaced on the next Acquire.
package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/hostops/terminate/internal/constants"
	"github.com/hostops/terminate/internal/proc"
	"github.com/hostops/terminate/internal/util"
)

// Common errors
var (
	ErrLocked      = errors.New("another terminate run holds the run lock")
	ErrNotLocked   = errors.New("run lock is not held")
	ErrInvalidLock = errors.New("invalid lock owner file")
)

// LockInfo contains information about who holds a lock.
type LockInfo struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
	RunID      string    `json:"run_id,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
}

// IsStale checks if the owning process is gone.
func (l *LockInfo) IsStale() bool {
	return !proc.Exists(context.Background(), l.PID)
}

// RunLock is the per-host run lock.
type RunLock struct {
	dir       string
	lockPath  string
	ownerPath string
	fl        *flock.Flock
}

// New creates a RunLock stored in dir.
func New(dir string) *RunLock {
	lockPath := filepath.Join(dir, constants.FileRunLock)
	return &RunLock{
		dir:       dir,
		lockPath:  lockPath,
		ownerPath: filepath.Join(dir, constants.FileRunOwner),
		fl:        flock.New(lockPath),
	}
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.lockPath
}

// Acquire takes the lock without waiting.
// Returns ErrLocked if another process holds it.
func (l *RunLock) Acquire(runID string) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	locked, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		if info, err := l.Read(); err == nil {
			return fmt.Errorf("%w: PID %d (run: %s, acquired: %s)",
				ErrLocked, info.PID, info.RunID, info.AcquiredAt.Format(time.RFC3339))
		}
		return ErrLocked
	}

	if err := l.write(runID); err != nil {
		_ = l.fl.Unlock()
		return err
	}
	return nil
}

// Release removes the owner record and releases the lock. Releasing a lock
// that is not held is a no-op.
func (l *RunLock) Release() error {
	if !l.fl.Locked() {
		return nil
	}
	if err := os.Remove(l.ownerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = l.fl.Unlock()
		return fmt.Errorf("removing lock owner: %w", err)
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// Read reads the current owner record without modifying it.
func (l *RunLock) Read() (*LockInfo, error) {
	data, err := os.ReadFile(l.ownerPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLocked
		}
		return nil, fmt.Errorf("reading lock owner: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLock, err)
	}
	return &info, nil
}

// Held reports whether any process currently holds the lock. It probes with
// a separate file handle, so it also sees a lock held by this process.
func (l *RunLock) Held() (bool, error) {
	if _, err := os.Stat(l.lockPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	probe := flock.New(l.lockPath)
	locked, err := probe.TryRLock()
	if err != nil {
		return false, fmt.Errorf("probing lock: %w", err)
	}
	if locked {
		_ = probe.Unlock()
		return false, nil
	}
	return true, nil
}

// Status returns a human-readable status of the lock.
func (l *RunLock) Status() string {
	held, err := l.Held()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	info, readErr := l.Read()
	if !held {
		if readErr == nil {
			return fmt.Sprintf("unlocked (stale owner record, PID %d)", info.PID)
		}
		return "unlocked"
	}

	if readErr != nil {
		return "locked (owner unknown)"
	}
	if info.PID == os.Getpid() {
		return "locked (by us)"
	}
	return fmt.Sprintf("locked by PID %d (run: %s, since %s)",
		info.PID, info.RunID, info.AcquiredAt.Format(time.RFC3339))
}

// write records this process as the owner.
func (l *RunLock) write(runID string) error {
	hostname, _ := os.Hostname()
	info := LockInfo{
		PID:        os.Getpid(),
		AcquiredAt: time.Now(),
		RunID:      runID,
		Hostname:   hostname,
	}
	if err := util.AtomicWriteJSON(l.ownerPath, info); err != nil {
		return fmt.Errorf("writing lock owner: %w", err)
	}
	return nil
}

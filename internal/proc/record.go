package proc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrProcessGone = errors.New("process no longer running")
	ErrPermission  = errors.New("permission denied")
)

// Record is a point-in-time view of one running process.
// A zero StartTime means the start time could not be read.
type Record struct {
	PID       int
	Name      string
	Path      string
	StartTime time.Time
}

// HasStartTime reports whether the provider could read the start time.
func (r Record) HasStartTime() bool {
	return !r.StartTime.IsZero()
}

// Warning describes a process the provider saw but could not describe.
type Warning struct {
	PID int
	Err error
}

func (w Warning) Error() string {
	return fmt.Sprintf("pid %d: %v", w.PID, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Snapshot is the result of one enumeration of the process table.
// Records keep the order the provider produced them in.
type Snapshot struct {
	Taken    time.Time
	Records  []Record
	Warnings []Warning
}

// Provider enumerates running processes.
// A returned error means the enumeration itself failed; per-process failures
// are reported as Snapshot.Warnings instead.
type Provider interface {
	List(ctx context.Context) (Snapshot, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context) (Snapshot, error)

// List calls f.
func (f ProviderFunc) List(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}

// Package target selects the processes a run will act on.
//
// A Target is a copy of a process record taken at the moment it matched the
// run's filter. Its Age is computed once, at that moment, and stored; nothing
// downstream recomputes it.
package target

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hostops/terminate/internal/constants"
	"github.com/hostops/terminate/internal/proc"
)

// Common errors
var (
	ErrMissingName      = errors.New("record has no name")
	ErrUnknownStartTime = errors.New("record has no start time")
)

// Target is a selected process instance.
type Target struct {
	Name          string
	Path          string
	PID           int
	StartTime     time.Time
	DiscoveryTime time.Time

	// Age is the elapsed running time in whole minutes at DiscoveryTime.
	Age int
}

// New copies rec into a Target discovered at the given time.
func New(rec proc.Record, discovered time.Time) (Target, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return Target{}, ErrMissingName
	}
	if !rec.HasStartTime() {
		return Target{}, ErrUnknownStartTime
	}
	return Target{
		Name:          rec.Name,
		Path:          rec.Path,
		PID:           rec.PID,
		StartTime:     rec.StartTime,
		DiscoveryTime: discovered,
		Age:           AgeMinutes(rec.StartTime, discovered),
	}, nil
}

// Older reports whether the target's age exceeds ttl minutes.
func (t Target) Older(ttl int) bool {
	return t.Age > ttl
}

func (t Target) String() string {
	return fmt.Sprintf("%s (pid %d, %d min)", t.Name, t.PID, t.Age)
}

// AgeMinutes returns the span from start to end as day, hour and minute
// components summed into minutes. Seconds and below are discarded, and each
// component truncates toward zero.
func AgeMinutes(start, end time.Time) int {
	span := end.Sub(start)
	days := int(span / (24 * time.Hour))
	hours := int(span / time.Hour % 24)
	minutes := int(span / time.Minute % 60)
	return days*24*60 + hours*60 + minutes
}

// NormalizeName lowercases name and appends the .exe suffix if missing, so
// that "NOTEPAD", "notepad" and "notepad.exe" compare equal.
func NormalizeName(name string) string {
	n := cases.Lower(language.Und).String(strings.TrimSpace(name))
	if n == "" {
		return n
	}
	if !strings.HasSuffix(n, constants.ExeSuffix) {
		n += constants.ExeSuffix
	}
	return n
}

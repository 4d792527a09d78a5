// Package reporter sends process information to the LANDesk inventory agent.
//
// The agent's scanner (miniscan.exe) accepts custom data on its command line.
// Tagging a process runs the scanner twice, once for the process name and
// once for its age, waiting for each run to exit before starting the next.
// The scanner's install directory is looked up through a Resolver so tests
// and non-Windows hosts can supply it without the registry.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostops/terminate/internal/constants"
	"github.com/hostops/terminate/internal/util"
)

// Common errors
var (
	ErrInstallPathUnresolved = errors.New("reporter install path unresolved")
	ErrReportFailed          = errors.New("report failed")
)

// Reporter transmits one labeled custom data field.
type Reporter interface {
	Report(ctx context.Context, field, value string) error
}

// Runner starts a command in dir and blocks until it exits.
type Runner func(ctx context.Context, dir, name string, args ...string) error

// Miniscan reports through the inventory scanner installed in Dir.
type Miniscan struct {
	Dir        string
	Executable string
	Run        Runner

	// Timeout bounds each scanner run. Zero waits indefinitely.
	Timeout time.Duration
}

// SendArg formats the scanner argument for one field.
func SendArg(field, value string) string {
	return fmt.Sprintf("/send=%s = %s", field, value)
}

// Report runs the scanner once and waits for it to exit.
func (m Miniscan) Report(ctx context.Context, field, value string) error {
	exe := m.Executable
	if exe == "" {
		exe = constants.ReporterExecutable
	}
	run := m.Run
	if run == nil {
		run = util.ExecRun
	}

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	if err := run(ctx, m.Dir, filepath.Join(m.Dir, exe), SendArg(field, value)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportFailed, field, err)
	}
	return nil
}

// Tagger implements the tag disposition: resolve the scanner once, then
// report the name and the age in that order.
type Tagger struct {
	Resolver  Resolver
	NameField string
	AgeField  string

	// NewReporter builds a Reporter for the resolved install directory.
	NewReporter func(dir string) Reporter

	Log zerolog.Logger
}

// NewTagger returns a Tagger reporting through miniscan.
func NewTagger(res Resolver, executable string, timeout time.Duration, log zerolog.Logger) *Tagger {
	return &Tagger{
		Resolver:  res,
		NameField: constants.FieldProcessName,
		AgeField:  constants.FieldProcessAge,
		NewReporter: func(dir string) Reporter {
			return Miniscan{Dir: dir, Executable: executable, Timeout: timeout}
		},
		Log: log,
	}
}

// Tag reports name and ageMinutes. If the install directory cannot be
// resolved nothing is sent. Otherwise both reports are attempted, even when
// the first fails, and Tag succeeds only if both do.
func (t *Tagger) Tag(ctx context.Context, name string, ageMinutes int) error {
	if t.Resolver == nil {
		return ErrInstallPathUnresolved
	}
	dir, err := t.Resolver.Resolve()
	if err != nil {
		if !errors.Is(err, ErrInstallPathUnresolved) {
			err = fmt.Errorf("%w: %w", ErrInstallPathUnresolved, err)
		}
		return err
	}
	t.Log.Debug().Str("dir", dir).Msg("reporter resolved")

	rep := t.NewReporter(dir)
	nameErr := rep.Report(ctx, t.field(t.NameField, constants.FieldProcessName), name)
	ageErr := rep.Report(ctx, t.field(t.AgeField, constants.FieldProcessAge), strconv.Itoa(ageMinutes))
	return errors.Join(nameErr, ageErr)
}

func (t *Tagger) field(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

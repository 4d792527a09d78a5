package target

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hostops/terminate/internal/proc"
)

// Skipped is a matching record that could not become a Target.
type Skipped struct {
	Record proc.Record
	Err    error
}

// Selection is the working set for one run.
type Selection struct {
	Targets []Target
	Skipped []Skipped
}

// Options configures Select.
type Options struct {
	// Now is sampled once per matching record. Defaults to time.Now.
	Now func() time.Time

	// Log receives per-record diagnostics. The zero Logger discards them.
	Log zerolog.Logger
}

// Select returns the records whose name matches filter, in snapshot order.
// A record that cannot be copied is logged and reported in Skipped; it never
// stops the rest of the selection. No matches yields an empty Selection.
func Select(filter string, records []proc.Record, opts Options) Selection {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	want := NormalizeName(filter)

	var sel Selection
	if want == "" {
		return sel
	}

	for _, rec := range records {
		opts.Log.Debug().Int("pid", rec.PID).Msgf("evaluating: %s", rec.Name)
		if NormalizeName(rec.Name) != want {
			continue
		}

		t, err := New(rec, now())
		if err != nil {
			opts.Log.Warn().Int("pid", rec.PID).Err(err).
				Msgf("Warning: could not evaluate potential target: %s", rec.Name)
			sel.Skipped = append(sel.Skipped, Skipped{Record: rec, Err: err})
			continue
		}
		sel.Targets = append(sel.Targets, t)
	}
	return sel
}

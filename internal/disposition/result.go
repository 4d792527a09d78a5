package disposition

import (
	"errors"

	"github.com/hostops/terminate/internal/proc"
	"github.com/hostops/terminate/internal/reporter"
	"github.com/hostops/terminate/internal/target"
)

// Action is the side effect chosen for a target.
type Action string

const (
	ActionNone Action = "none"
	ActionKill Action = "kill"
	ActionTag  Action = "tag"
)

// Outcome is how processing a target ended.
type Outcome int

const (
	// OutcomeTooYoung means the target was not old enough to act on.
	OutcomeTooYoung Outcome = iota
	// OutcomeActed means the action completed and the target counts.
	OutcomeActed
	// OutcomeFailed means the action was attempted and failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeActed:
		return "acted"
	case OutcomeFailed:
		return "failed"
	default:
		return "too_young"
	}
}

// Kind classifies a failed Result.
type Kind string

const (
	KindNone                Kind = ""
	KindProcessGone         Kind = "process_gone"
	KindPermission          Kind = "permission_denied"
	KindReporterUnavailable Kind = "reporter_unavailable"
	KindReportFailed        Kind = "report_failed"
	KindOther               Kind = "other"
)

// Result records what happened to one target.
type Result struct {
	Target  target.Target
	Action  Action
	Outcome Outcome
	Err     error
}

// Succeeded reports whether the target counts toward the run tally.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeActed
}

// Kind classifies the failure, or returns KindNone if there was none.
func (r Result) Kind() Kind {
	if r.Err == nil {
		return KindNone
	}
	switch {
	case errors.Is(r.Err, proc.ErrProcessGone):
		return KindProcessGone
	case errors.Is(r.Err, proc.ErrPermission):
		return KindPermission
	case errors.Is(r.Err, reporter.ErrInstallPathUnresolved):
		return KindReporterUnavailable
	case errors.Is(r.Err, reporter.ErrReportFailed):
		return KindReportFailed
	default:
		return KindOther
	}
}

// Report is the outcome of a whole run.
type Report struct {
	Results []Result

	// Processed counts targets whose action succeeded.
	Processed int
}

// Count returns the number of results with the given outcome.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

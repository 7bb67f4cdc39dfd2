package build

import (
	"time"

	bferrors "git.home.luguber.info/inful/blogforge/internal/errors"
)

// Outcome is the final status of a build run.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Failure records one document that could not be processed.
type Failure struct {
	Path string
	Kind bferrors.Kind
	Err  error
}

// Report summarizes one build run.
type Report struct {
	BuildID       string
	Start         time.Time
	Duration      time.Duration
	PagesRendered int
	Categories    int
	Failures      []Failure
	LinkIssues    int
	Outcome       Outcome
}

// Failed reports whether the build produced any document failures.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0 || r.Outcome == OutcomeFailed
}

func newFailure(err error) Failure {
	return Failure{
		Path: bferrors.PathOf(err),
		Kind: bferrors.KindOf(err),
		Err:  err,
	}
}

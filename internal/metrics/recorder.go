package metrics

import (
	"context"
	"errors"
	"time"
)

// EntryKind classifies what the tree builder produced for one source entry.
type EntryKind string

const (
	EntryDirectory  EntryKind = "directory"
	EntryPage       EntryKind = "page"
	EntryMarkdown   EntryKind = "markdown"
	EntryCopy       EntryKind = "copy"
	EntryStylesheet EntryKind = "stylesheet"
)

// Outcome is the final status of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// OutcomeFor classifies the error a build returned.
func OutcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeFailed
	}
}

// Recorder defines observability hooks for builds.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome Outcome)
	IncEntry(kind EntryKind)
	AddBytesWritten(n int64)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(Outcome)            {}
func (NoopRecorder) IncEntry(EntryKind)                 {}
func (NoopRecorder) AddBytesWritten(int64)              {}

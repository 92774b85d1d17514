// Package importer normalizes the two meet file formats into canonical swim
// records: a tabular entries file and an HTML-rendered results report.
//
// Both pipelines follow the same error policy: field- and row-level problems
// are logged, counted and reported, and the batch continues. Writes are
// idempotent, so re-importing a file (or racing a concurrent import of
// overlapping data) is safe.
package importer

import (
	"context"
	"time"

	"github.com/coachdesk/swimmeet/internal/swim"
)

// Pipeline labels used in logs, metrics and reports.
const (
	pipelineEntries = "entries"
	pipelineResults = "results"
)

// maxReportFailures caps the per-row failure detail carried in a Report.
// Skipped counts keep incrementing past the cap.
const maxReportFailures = 100

// Store is the persistence surface the importers drive.
// Implemented by *store.Store; faked in tests.
type Store interface {
	UpsertSwimmer(ctx context.Context, sw swim.Swimmer) (string, error)
	FindSwimmerByName(ctx context.Context, fullName string) (swim.Swimmer, error)
	InsertTime(ctx context.Context, t swim.SwimmerTime) (bool, error)
	InsertEntriesLoad(ctx context.Context, numSwimmers, numEntries int, duration time.Duration, swimmerIDs []string) (string, error)
}

// RowFailure describes one skipped row, course slot or field.
type RowFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report is the structured outcome of one file import. Per-row failures are
// part of the caller-visible result, not just the logs.
type Report struct {
	Pipeline   string       `json:"pipeline"`
	LoadID     string       `json:"loadId,omitempty"`
	Rows       int          `json:"rows"`
	Entries    int          `json:"entries"`
	Swimmers   int          `json:"swimmers"`
	Times      int          `json:"times"`
	Duplicates int          `json:"duplicates"`
	Skipped    int          `json:"skipped"`
	Failures   []RowFailure `json:"failures,omitempty"`
	DurationMs int64        `json:"durationMs"`
}

// fail records a skipped unit with its reason.
func (r *Report) fail(line int, reason string) {
	r.Skipped++
	if len(r.Failures) < maxReportFailures {
		r.Failures = append(r.Failures, RowFailure{Line: line, Reason: reason})
	}
}

// FirstError returns the first recorded failure reason, or "".
func (r *Report) FirstError() string {
	if len(r.Failures) == 0 {
		return ""
	}
	return r.Failures[0].Reason
}

package walkplan

import (
	"context"
	"time"
)

// Result is the outcome of planning one request. Exactly one of Plan or Err
// is meaningful: Plan is the zero value when Err is set.
type Result struct {
	Request string
	Plan    TripPlan
	Err     error
}

// Report is a set of results produced by one invocation.
type Report struct {
	ID        string
	CreatedAt time.Time
	Results   []Result
}

// ReportSummary describes a stored report without its results.
type ReportSummary struct {
	ID        string
	CreatedAt time.Time
	Total     int
	Failed    int
}

// ReportStore keeps a history of planning reports.
type ReportStore interface {
	// SaveReport stores r. Saving an ID twice is an error.
	SaveReport(ctx context.Context, r Report) error

	// Report returns the report with the given ID, or ErrNotFound.
	Report(ctx context.Context, id string) (Report, error)

	// Reports returns up to limit summaries, newest first.
	Reports(ctx context.Context, limit int) ([]ReportSummary, error)
}

// Summary counts the results of r.
func (r Report) Summary() ReportSummary {
	s := ReportSummary{ID: r.ID, CreatedAt: r.CreatedAt, Total: len(r.Results)}
	for _, res := range r.Results {
		if res.Err != nil {
			s.Failed++
		}
	}
	return s
}

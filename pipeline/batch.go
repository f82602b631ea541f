package pipeline

import (
	"context"

	"github.com/fwojciec/walkplan"
	"golang.org/x/sync/errgroup"
)

// PlanAll plans each request independently, running at most limit requests
// at once (limit <= 0 means no limit). A failed request does not stop the
// others. Results are in input order.
func (p *Planner) PlanAll(ctx context.Context, requests []string, limit int) []walkplan.Result {
	results := make([]walkplan.Result, len(requests))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range requests {
		g.Go(func() error {
			plan, err := p.Plan(ctx, req)
			results[i] = walkplan.Result{Request: req, Plan: plan, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

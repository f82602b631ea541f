package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/walkplan"
	"github.com/fwojciec/walkplan/mock"
	"github.com/fwojciec/walkplan/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoCompleter plans a walk that starts and ends at the request text.
// Requests containing "moon" are rejected.
func echoCompleter(onCall func()) *mock.Completer {
	return &mock.Completer{
		CompleteFn: func(ctx context.Context, system, user string) (string, error) {
			if onCall != nil {
				onCall()
			}
			req := strings.TrimSuffix(strings.TrimPrefix(user, "####"), "####")
			switch {
			case strings.Contains(system, "Determine if the user's"):
				if strings.Contains(req, "moon") {
					return `{"is_valid": false, "suggested_request": "walk in the park"}`, nil
				}
				return `{"is_valid": true, "suggested_request": "ok"}`, nil
			case strings.Contains(system, "Convert the\nuser's request"):
				return "- Start at " + req + "\n- End at " + req, nil
			default:
				start := strings.TrimPrefix(strings.SplitN(req, "\n", 2)[0], "- Start at ")
				return `{"start": "` + start + `", "end": "` + start + `", "transit": "walking"}`, nil
			}
		},
	}
}

func TestPlanAll_PreservesOrder(t *testing.T) {
	t.Parallel()
	p := pipeline.New(echoCompleter(nil))
	requests := []string{"Elm Street", "rocket to the moon", "Oak Avenue", "Pine Road"}

	results := p.PlanAll(context.Background(), requests, 2)
	require.Len(t, results, len(requests))
	for i, r := range results {
		assert.Equal(t, requests[i], r.Request)
	}

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "Elm Street", results[0].Plan.Start)
	assert.Equal(t, []string{}, results[0].Plan.Waypoints)

	assert.True(t, errors.Is(results[1].Err, walkplan.ErrInfeasible))
	assert.Equal(t, walkplan.TripPlan{}, results[1].Plan)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, "Oak Avenue", results[2].Plan.Start)
	assert.NoError(t, results[3].Err)
	assert.Equal(t, "Pine Road", results[3].Plan.End)
}

func TestPlanAll_RespectsLimit(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var inFlight, peak int
	c := echoCompleter(nil)
	inner := c.CompleteFn
	c.CompleteFn = func(ctx context.Context, system, user string) (string, error) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
		return inner(ctx, system, user)
	}

	requests := make([]string, 12)
	for i := range requests {
		requests[i] = "Corner " + string(rune('A'+i))
	}
	results := pipeline.New(c).PlanAll(context.Background(), requests, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	assert.LessOrEqual(t, peak, 3)
	assert.GreaterOrEqual(t, peak, 1)
}

func TestPlanAll_Empty(t *testing.T) {
	t.Parallel()
	results := pipeline.New(echoCompleter(func() { t.Error("unexpected call") })).PlanAll(context.Background(), nil, 0)
	assert.Empty(t, results)
}

func TestPlanAll_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pipeline.New(echoCompleter(func() { t.Error("unexpected call") })).PlanAll(ctx, []string{"a", "b"}, 0)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, errors.Is(r.Err, context.Canceled))
	}
}

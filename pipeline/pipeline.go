// Package pipeline turns a free-text dog walk request into a walkplan.TripPlan
// through three completion stages: validate, itinerary and extract.
//
// Stages run strictly in order within one Plan call. A rejected request ends
// the run with the model's suggested rewrite as feedback; the caller decides
// whether to resubmit it. Planner holds no per-request state, so one Planner
// may serve concurrent Plan calls.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/walkplan"
	"github.com/fwojciec/walkplan/extract"
	"github.com/fwojciec/walkplan/markdown"
	"github.com/fwojciec/walkplan/prompt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxExtractRetries caps corrective re-prompts of the extract stage.
const MaxExtractRetries = 2

// Planner runs the planning pipeline against a Completer.
type Planner struct {
	completer      walkplan.Completer
	onEvent        func(walkplan.Event)
	logger         *zap.Logger
	extractRetries int
}

// Option configures a Planner.
type Option func(*Planner)

// WithEventHandler sets a callback that receives stage progress events.
// The handler must be safe for concurrent use when the Planner is shared.
func WithEventHandler(h func(walkplan.Event)) Option {
	return func(p *Planner) { p.onEvent = h }
}

// WithLogger sets the structured logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithExtractRetries allows up to n corrective re-prompts when the extract
// stage output fails to parse. n is clamped to [0, MaxExtractRetries].
// Default is 0: parse failures are returned immediately.
func WithExtractRetries(n int) Option {
	return func(p *Planner) { p.extractRetries = min(max(n, 0), MaxExtractRetries) }
}

// New creates a Planner that sends every stage to c.
func New(c walkplan.Completer, opts ...Option) *Planner {
	p := &Planner{
		completer: c,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Plan runs the pipeline for request. On failure it returns a
// *walkplan.PipelineError naming the stage and never a partial plan. When
// validation rejects the request, the error's Feedback holds the suggested
// request and errors.Is(err, walkplan.ErrInfeasible) reports true.
func (p *Planner) Plan(ctx context.Context, request string) (walkplan.TripPlan, error) {
	r := &run{Planner: p, id: uuid.NewString()}
	r.log = p.logger.With(zap.String("request_id", r.id))
	started := time.Now()

	verdict, err := r.validate(ctx, request)
	if err != nil {
		return walkplan.TripPlan{}, err
	}
	if !verdict.IsValid {
		return walkplan.TripPlan{}, r.fail(&walkplan.PipelineError{
			Stage:    walkplan.StageValidate,
			Feedback: verdict.SuggestedRequest,
		})
	}

	itinerary, err := r.itinerary(ctx, request)
	if err != nil {
		return walkplan.TripPlan{}, err
	}

	plan, err := r.extract(ctx, itinerary)
	if err != nil {
		return walkplan.TripPlan{}, err
	}
	r.log.Info("plan complete",
		zap.String("start", plan.Start),
		zap.String("end", plan.End),
		zap.Int("waypoints", len(plan.Waypoints)),
		zap.String("transit", string(plan.Transit)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return plan, nil
}

// run carries the identity of a single Plan invocation.
type run struct {
	*Planner
	id  string
	log *zap.Logger
}

func (r *run) validate(ctx context.Context, request string) (walkplan.ValidationResult, error) {
	out, err := r.complete(ctx, walkplan.StageValidate, prompt.Vars{prompt.KeyQuery: request}, 1, "")
	if err != nil {
		return walkplan.ValidationResult{}, err
	}
	verdict, err := extract.Validation(out)
	if err != nil {
		return walkplan.ValidationResult{}, r.fail(&walkplan.PipelineError{Stage: walkplan.StageValidate, Cause: err})
	}
	r.log.Debug("request validated", zap.Bool("is_valid", verdict.IsValid))
	return verdict, nil
}

func (r *run) itinerary(ctx context.Context, request string) (string, error) {
	out, err := r.complete(ctx, walkplan.StageItinerary, prompt.Vars{prompt.KeyQuery: request}, 1, "")
	if err != nil {
		return "", err
	}
	if markdown.PlainText(out) == "" {
		return "", r.fail(&walkplan.PipelineError{Stage: walkplan.StageItinerary, Cause: walkplan.ErrEmptyItinerary})
	}
	r.log.Debug("itinerary ready", zap.Int("items", len(markdown.Items(out))))
	return out, nil
}

func (r *run) extract(ctx context.Context, itinerary string) (walkplan.TripPlan, error) {
	vars := prompt.Vars{prompt.KeyAgentSuggestion: itinerary}
	var note string
	for attempt := 1; ; attempt++ {
		out, err := r.complete(ctx, walkplan.StageExtract, vars, attempt, note)
		if err != nil {
			return walkplan.TripPlan{}, err
		}
		plan, err := extract.TripPlan(out)
		if err == nil {
			return plan, nil
		}
		if attempt > r.extractRetries {
			return walkplan.TripPlan{}, r.fail(&walkplan.PipelineError{Stage: walkplan.StageExtract, Cause: err})
		}
		reason := err.Error()
		var pe *walkplan.ParseError
		if errors.As(err, &pe) {
			reason = pe.Reason
		}
		r.log.Debug("retrying extract", zap.Int("attempt", attempt+1), zap.String("reason", reason))
		r.emit(walkplan.EventRetry{RequestID: r.id, Stage: walkplan.StageExtract, Attempt: attempt + 1, Reason: reason})
		note = prompt.Correction(reason)
	}
}

// complete renders the stage prompt and calls the completer. note, when set,
// is appended to the user message.
func (r *run) complete(ctx context.Context, stage walkplan.Stage, vars prompt.Vars, attempt int, note string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", r.fail(&walkplan.PipelineError{Stage: stage, Cause: err})
	}
	pr, err := prompt.Render(stage, vars)
	if err != nil {
		return "", r.fail(&walkplan.PipelineError{Stage: stage, Cause: err})
	}
	user := pr.User
	if note != "" {
		user += "\n\n" + note
	}

	r.emit(walkplan.EventStageStarted{RequestID: r.id, Stage: stage, Attempt: attempt})
	started := time.Now()
	out, err := r.completer.Complete(ctx, pr.System, user)
	if err != nil {
		return "", r.fail(&walkplan.PipelineError{Stage: stage, Cause: &walkplan.ServiceError{Err: err}})
	}
	elapsed := time.Since(started)
	r.log.Debug("stage complete",
		zap.String("stage", string(stage)),
		zap.Int("attempt", attempt),
		zap.Int("output_bytes", len(out)),
		zap.Duration("elapsed", elapsed),
	)
	r.emit(walkplan.EventStageCompleted{RequestID: r.id, Stage: stage, Output: out, Duration: elapsed})
	return out, nil
}

// fail reports a terminal pipeline error and returns it.
func (r *run) fail(err *walkplan.PipelineError) error {
	fields := []zap.Field{zap.String("stage", string(err.Stage))}
	if err.Cause == nil {
		r.log.Info("request rejected", append(fields, zap.String("feedback", strings.TrimSpace(err.Feedback)))...)
	} else {
		r.log.Warn("stage failed", append(fields, zap.Error(err.Cause))...)
	}
	r.emit(walkplan.EventStageFailed{RequestID: r.id, Stage: err.Stage, Err: err})
	return err
}

func (r *run) emit(evt walkplan.Event) {
	if r.onEvent != nil {
		r.onEvent(evt)
	}
}

package json

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/walkplan"
)

// Error kinds. The kind is enough to rebuild an error that matches the same
// sentinel with errors.Is after a round trip.
const (
	kindInfeasible      = "infeasible"
	kindParse           = "parse"
	kindService         = "service"
	kindMissingVariable = "missing_variable"
	kindEmptyItinerary  = "empty_itinerary"
	kindCanceled        = "canceled"
	kindDeadline        = "deadline_exceeded"
	kindOther           = "other"
)

// errorDTO is the JSON representation of a failed result.
type errorDTO struct {
	Kind     string `json:"kind"`
	Stage    string `json:"stage,omitempty"`
	Message  string `json:"message"`
	Feedback string `json:"feedback,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func marshalError(err error) *errorDTO {
	dto := &errorDTO{Message: err.Error()}
	var pe *walkplan.PipelineError
	if errors.As(err, &pe) {
		dto.Stage = string(pe.Stage)
		dto.Feedback = pe.Feedback
	}

	var parseErr *walkplan.ParseError
	var mv *walkplan.MissingVariableError
	var se *walkplan.ServiceError
	switch {
	case errors.As(err, &parseErr):
		dto.Kind = kindParse
		dto.Detail = parseErr.Reason
	case errors.As(err, &mv):
		dto.Kind = kindMissingVariable
		dto.Detail = mv.Key
	case errors.As(err, &se):
		dto.Kind = kindService
		dto.Detail = se.Err.Error()
	case errors.Is(err, walkplan.ErrEmptyItinerary):
		dto.Kind = kindEmptyItinerary
	case errors.Is(err, context.Canceled):
		dto.Kind = kindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		dto.Kind = kindDeadline
	case errors.Is(err, walkplan.ErrInfeasible):
		dto.Kind = kindInfeasible
	default:
		dto.Kind = kindOther
		if pe != nil && pe.Cause != nil {
			dto.Detail = pe.Cause.Error()
		}
	}
	return dto
}

func unmarshalError(dto errorDTO) (error, error) {
	stage := walkplan.Stage(dto.Stage)
	var cause error
	switch dto.Kind {
	case kindInfeasible:
		if stage == "" {
			stage = walkplan.StageValidate
		}
		return &walkplan.PipelineError{Stage: stage, Feedback: dto.Feedback}, nil
	case kindParse:
		cause = &walkplan.ParseError{Reason: dto.Detail}
	case kindMissingVariable:
		cause = &walkplan.MissingVariableError{Stage: stage, Key: dto.Detail}
	case kindService:
		cause = &walkplan.ServiceError{Err: errors.New(dto.Detail)}
	case kindEmptyItinerary:
		cause = walkplan.ErrEmptyItinerary
	case kindCanceled:
		cause = context.Canceled
	case kindDeadline:
		cause = context.DeadlineExceeded
	case kindOther:
		msg := dto.Detail
		if msg == "" {
			msg = dto.Message
		}
		cause = errors.New(msg)
	default:
		return nil, fmt.Errorf("unknown error kind: %q", dto.Kind)
	}
	if stage == "" {
		return cause, nil
	}
	return &walkplan.PipelineError{Stage: stage, Cause: cause}, nil
}

package walkplan

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrMissingVariable indicates a prompt was rendered without a required variable.
	ErrMissingVariable = errors.New("missing prompt variable")

	// ErrUnknownStage indicates a stage outside validate, itinerary and extract.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrParse indicates model output did not match the expected schema.
	ErrParse = errors.New("parse error")

	// ErrService indicates the text completion service failed.
	ErrService = errors.New("completion service error")

	// ErrInfeasible indicates the validate stage rejected the request.
	ErrInfeasible = errors.New("request is not feasible")

	// ErrEmptyItinerary indicates the itinerary stage produced no usable text.
	ErrEmptyItinerary = errors.New("empty itinerary")

	// ErrNotFound indicates a stored report does not exist.
	ErrNotFound = errors.New("not found")
)

// MissingVariableError reports the variable a stage template needed.
type MissingVariableError struct {
	Stage Stage
	Key   string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s prompt: missing variable %q", e.Stage, e.Key)
}

// Unwrap returns ErrMissingVariable.
func (e *MissingVariableError) Unwrap() error { return ErrMissingVariable }

// ParseError reports why model output could not be turned into a record.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// Unwrap returns ErrParse.
func (e *ParseError) Unwrap() error { return ErrParse }

// ServiceError wraps a failure of the text completion service.
// Both ErrService and the underlying error match errors.Is.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service: %v", e.Err)
}

// Unwrap returns ErrService and the wrapped error.
func (e *ServiceError) Unwrap() []error { return []error{ErrService, e.Err} }

// PipelineError is the top-level failure returned by a planning run, tagged
// with the stage where it occurred. Exactly one of Cause or Feedback is set:
// Feedback carries the suggested rewrite when validation rejects the request.
type PipelineError struct {
	Stage    Stage
	Cause    error
	Feedback string
}

func (e *PipelineError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s stage: %v: %s", e.Stage, ErrInfeasible, e.Feedback)
	}
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Cause)
}

// Unwrap returns the cause, or ErrInfeasible for validation feedback.
func (e *PipelineError) Unwrap() error {
	if e.Cause == nil {
		return ErrInfeasible
	}
	return e.Cause
}

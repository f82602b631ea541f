package walkplan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/walkplan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingVariableError(t *testing.T) {
	t.Parallel()
	err := &walkplan.MissingVariableError{Stage: walkplan.StageExtract, Key: "agent_suggestion"}
	assert.Equal(t, `extract prompt: missing variable "agent_suggestion"`, err.Error())
	assert.True(t, errors.Is(err, walkplan.ErrMissingVariable))
}

func TestParseError(t *testing.T) {
	t.Parallel()
	err := &walkplan.ParseError{Reason: "no structured payload found"}
	assert.Equal(t, "parse error: no structured payload found", err.Error())
	assert.True(t, errors.Is(err, walkplan.ErrParse))
}

func TestServiceError(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")
	err := &walkplan.ServiceError{Err: cause}
	assert.Equal(t, "completion service: connection reset", err.Error())
	assert.True(t, errors.Is(err, walkplan.ErrService))
	assert.True(t, errors.Is(err, cause))
}

func TestPipelineError(t *testing.T) {
	t.Parallel()

	t.Run("feedback", func(t *testing.T) {
		t.Parallel()
		err := &walkplan.PipelineError{Stage: walkplan.StageValidate, Feedback: "Walk to the park"}
		assert.Equal(t, "validate stage: request is not feasible: Walk to the park", err.Error())
		assert.True(t, errors.Is(err, walkplan.ErrInfeasible))
		assert.False(t, errors.Is(err, walkplan.ErrParse))
	})

	t.Run("cause", func(t *testing.T) {
		t.Parallel()
		err := &walkplan.PipelineError{
			Stage: walkplan.StageExtract,
			Cause: &walkplan.ParseError{Reason: "bad transit"},
		}
		assert.Equal(t, "extract stage: parse error: bad transit", err.Error())
		assert.True(t, errors.Is(err, walkplan.ErrParse))
		assert.False(t, errors.Is(err, walkplan.ErrInfeasible))

		var pe *walkplan.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "bad transit", pe.Reason)
	})

	t.Run("nested service error", func(t *testing.T) {
		t.Parallel()
		err := &walkplan.PipelineError{
			Stage: walkplan.StageItinerary,
			Cause: &walkplan.ServiceError{Err: context.DeadlineExceeded},
		}
		assert.True(t, errors.Is(err, walkplan.ErrService))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

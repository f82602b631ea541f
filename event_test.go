package walkplan_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/walkplan"
	"github.com/stretchr/testify/assert"
)

func TestEvents_TypeSwitch(t *testing.T) {
	t.Parallel()
	events := []walkplan.Event{
		walkplan.EventStageStarted{RequestID: "r1", Stage: walkplan.StageValidate, Attempt: 1},
		walkplan.EventStageCompleted{RequestID: "r1", Stage: walkplan.StageValidate, Output: "{}", Duration: time.Second},
		walkplan.EventRetry{RequestID: "r1", Stage: walkplan.StageExtract, Attempt: 2, Reason: "bad transit"},
		walkplan.EventStageFailed{RequestID: "r1", Stage: walkplan.StageExtract, Err: walkplan.ErrParse},
	}

	var stages []walkplan.Stage
	for _, e := range events {
		switch ev := e.(type) {
		case walkplan.EventStageStarted:
			stages = append(stages, ev.Stage)
		case walkplan.EventStageCompleted:
			stages = append(stages, ev.Stage)
		case walkplan.EventRetry:
			stages = append(stages, ev.Stage)
		case walkplan.EventStageFailed:
			stages = append(stages, ev.Stage)
		}
	}
	assert.Equal(t, []walkplan.Stage{"validate", "validate", "extract", "extract"}, stages)
}

func TestCompleterFunc(t *testing.T) {
	t.Parallel()
	var c walkplan.Completer = walkplan.CompleterFunc(func(_ context.Context, system, user string) (string, error) {
		return system + "|" + user, nil
	})
	out, err := c.Complete(context.Background(), "s", "u")
	assert.NoError(t, err)
	assert.Equal(t, "s|u", out)
}

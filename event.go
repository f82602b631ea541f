package walkplan

import "time"

// Event is a sealed interface representing pipeline progress.
// Events are informational; failures are still returned from Plan.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventStageStarted is emitted before a stage calls the completer.
type EventStageStarted struct {
	RequestID string
	Stage     Stage
	Attempt   int
}

func (EventStageStarted) event() {}

// EventStageCompleted carries the raw completion text of a finished stage.
type EventStageCompleted struct {
	RequestID string
	Stage     Stage
	Output    string
	Duration  time.Duration
}

func (EventStageCompleted) event() {}

// EventStageFailed is emitted when a stage ends the run with an error.
type EventStageFailed struct {
	RequestID string
	Stage     Stage
	Err       error
}

func (EventStageFailed) event() {}

// EventRetry signals a corrective re-prompt after a parse failure.
type EventRetry struct {
	RequestID string
	Stage     Stage
	Attempt   int
	Reason    string
}

func (EventRetry) event() {}

// Interface compliance checks.
var (
	_ Event = EventStageStarted{}
	_ Event = EventStageCompleted{}
	_ Event = EventStageFailed{}
	_ Event = EventRetry{}
)

package sim

import (
	"log"
	"reflect"
)

// An EventLogger is a hook that logs events as they are triggered.
type EventLogger struct {
	*log.Logger
}

// NewEventLogger returns a new EventLogger that writes to the given logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes a log line when an event is about to be handled.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt := ctx.Item.(Event)
	h.Printf("%.10f, %s", evt.Time(), reflect.TypeOf(evt))
}

// Package sim provides the discrete-event core that drives the simulated
// machine: an engine, events, ticking components, and hooks.
package sim

// VTimeInSec is a time in the simulated space, in seconds.
type VTimeInSec float64

// An Event is something that will happen in the future.
type Event interface {
	// Time returns the time at which the event should happen.
	Time() VTimeInSec

	// Handler returns the handler that handles the event.
	Handler() Handler
}

// A Handler defines a domain for events. An event can only be scheduled by
// its handler and can only directly mutate that handler's state.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the common fields and getters for concrete events.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	return e
}

// Time returns the time at which the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler that handles the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

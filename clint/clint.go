// Package clint models the core-local interruptor: the platform timer and
// the per-hart comparators that raise timer interrupts.
package clint

import (
	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
)

type timerEvent struct {
	*sim.EventBase
	hart *rv.Hart
}

// A Comp drives simulated time for a set of harts. When a hart's time
// passes its stimecmp comparator, the comp marks the timer condition
// pending and invokes the interrupt callback, which stands in for the
// hardware vectoring into the trap handler.
type Comp struct {
	*sim.ComponentBase

	engine sim.Engine
	freq   sim.Freq
	harts  []*rv.Hart
	intr   func(h *rv.Hart)
}

// New creates a CLINT for the given harts. The intr callback is invoked
// on each timer expiration.
func New(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	harts []*rv.Hart,
	intr func(h *rv.Hart),
) *Comp {
	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		engine:        engine,
		freq:          freq,
		harts:         harts,
		intr:          intr,
	}

	return c
}

// Start schedules the first comparator check for every hart.
func (c *Comp) Start() {
	for _, h := range c.harts {
		c.scheduleAt(h, h.Stimecmp)
	}
}

// Handle processes a timer event for one hart.
func (c *Comp) Handle(e sim.Event) error {
	evt := e.(*timerEvent)
	h := evt.hart

	h.Time = c.freq.Cycle(e.Time())

	if h.Time >= h.Stimecmp {
		h.RaiseTimer()
		if c.intr == nil {
			return nil
		}
		c.intr(h)
	}

	// The handler rearms stimecmp; follow it there. A handler that did
	// not rearm stops the timer for this hart.
	if h.Stimecmp > h.Time {
		c.scheduleAt(h, h.Stimecmp)
	}

	return nil
}

func (c *Comp) scheduleAt(h *rv.Hart, cycle uint64) {
	t := sim.VTimeInSec(float64(cycle) / float64(c.freq))
	now := c.engine.CurrentTime()
	if t < now {
		t = now
	}

	c.engine.Schedule(&timerEvent{
		EventBase: sim.NewEventBase(t, c),
		hart:      h,
	})
}

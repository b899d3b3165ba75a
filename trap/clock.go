package trap

import "github.com/sarchlab/rvkernel/rv"

// ClockIntr handles one timer interrupt on the given hart. Only hart 0
// advances the shared tick counter, so tick accounting has a single
// source of truth; every hart rearms its own comparator.
func (c *Comp) ClockIntr(h *rv.Hart) {
	if h.ID == 0 {
		c.ticksLock.Lock()
		c.ticks++
		c.sched.Wakeup(&c.ticks)
		c.ticksLock.Unlock()
	}

	// ask for the next timer interrupt; this also clears the pending
	// timer condition
	h.WriteStimecmp(h.Time + c.timerInterval)
}

// Package plic models the platform-level interrupt controller. Devices
// raise interrupt lines; each hart context claims the highest-priority
// pending interrupt, handles it, and signals completion so the device may
// interrupt again.
package plic

import (
	"log"
	"sync"
)

// NumIRQ is the number of interrupt lines the controller arbitrates.
const NumIRQ = 64

// A Comp is the interrupt controller. One claim can be outstanding per
// interrupt line at a time, matching the hardware's behavior of letting
// each device raise at most one interrupt until completion.
type Comp struct {
	lock sync.Mutex
	name string

	pending [NumIRQ]bool
	claimed [NumIRQ]bool
}

// New creates a PLIC model.
func New(name string) *Comp {
	return &Comp{name: name}
}

// Name returns the name of the controller.
func (c *Comp) Name() string {
	return c.name
}

// Raise marks an interrupt line pending. Raising an already-pending or
// already-claimed line is a no-op, as on hardware.
func (c *Comp) Raise(irq int) {
	if irq <= 0 || irq >= NumIRQ {
		log.Panicf("plic: raising invalid irq %d", irq)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.claimed[irq] {
		return
	}
	c.pending[irq] = true
}

// Claim returns the lowest-numbered pending interrupt line and marks it
// claimed, or 0 if none is pending.
func (c *Comp) Claim(hartID int) int {
	c.lock.Lock()
	defer c.lock.Unlock()

	for irq := 1; irq < NumIRQ; irq++ {
		if c.pending[irq] {
			c.pending[irq] = false
			c.claimed[irq] = true
			return irq
		}
	}

	return 0
}

// Complete tells the controller the claimed interrupt has been handled,
// allowing the line to interrupt again.
func (c *Comp) Complete(hartID int, irq int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if irq <= 0 || irq >= NumIRQ || !c.claimed[irq] {
		log.Panicf("plic: completing irq %d that was not claimed", irq)
	}

	c.claimed[irq] = false
}

// HasPending reports whether any interrupt line is pending.
func (c *Comp) HasPending() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	for irq := 1; irq < NumIRQ; irq++ {
		if c.pending[irq] {
			return true
		}
	}

	return false
}

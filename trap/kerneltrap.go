package trap

import (
	"log"

	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
)

// KernelTrap handles an interrupt or exception taken while already in
// supervisor mode.
func (c *Comp) KernelTrap(h *rv.Hart) {
	sepc := h.Sepc
	sstatus := h.Sstatus
	scause := h.Scause

	if !h.InSupervisor() {
		log.Panic("kerneltrap: not from supervisor mode")
	}
	if h.IntrGet() {
		log.Panic("kerneltrap: interrupts enabled")
	}

	whichDev := c.DevIntr(h)
	if whichDev == NotRecognized {
		// interrupt or trap from an unknown source
		c.Log.Printf("scause=%#x sepc=%#x stval=%#x\n",
			scause, h.Sepc, h.Stval)
		log.Panic("kerneltrap")
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosKernelTrap,
			Item: Record{
				HartID:  h.ID,
				Scause:  scause,
				Epc:     sepc,
				Stval:   h.Stval,
				Outcome: outcomeName(whichDev),
			},
		})
	}

	// give up the hart if this was a timer interrupt
	if whichDev == TimerIntr && c.sched.CurrentProc(h.ID) != nil {
		c.sched.Yield(h.ID)
	}

	// yielding may have caused traps that overwrote the saved
	// registers; restore them for the trap-return sequence
	h.Sepc = sepc
	h.Sstatus = sstatus
}

func outcomeName(whichDev int) string {
	if whichDev == TimerIntr {
		return "timer"
	}
	return "device"
}

// DevIntr checks whether the trap is an external device interrupt or a
// timer interrupt and handles it. It returns TimerIntr for a timer
// interrupt, OtherDevice for any other recognized device, and
// NotRecognized otherwise.
func (c *Comp) DevIntr(h *rv.Hart) int {
	scause := h.Scause

	switch scause {
	case rv.ScauseSupervisorExternal:
		// a supervisor external interrupt, via the PLIC

		// irq tells us which device interrupted
		irq := c.ic.Claim(h.ID)

		switch {
		case irq == rv.UartIRQ && c.uart != nil:
			c.uart.Intr()
		case irq == rv.VirtioIRQ && c.disk != nil:
			c.disk.Intr()
		case irq == rv.E1000IRQ && c.nic != nil:
			c.nic.Intr()
		case irq != 0:
			c.Log.Printf("unexpected interrupt irq=%d\n", irq)
		}

		// the PLIC lets each device raise at most one interrupt at
		// a time; tell it the device may interrupt again
		if irq != 0 {
			c.ic.Complete(h.ID, irq)
		}

		return OtherDevice

	case rv.ScauseSupervisorTimer:
		c.ClockIntr(h)
		return TimerIntr

	default:
		return NotRecognized
	}
}

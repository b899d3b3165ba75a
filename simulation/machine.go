package simulation

import (
	"sync"

	"github.com/sarchlab/rvkernel/rv"
)

// A UserRetRecord is one completed switch to user mode.
type UserRetRecord struct {
	HartID int
	Satp   uint64
}

// ModeSwitcher stands in for the trampoline page. It performs the
// register legwork of sret and records every switch to user mode, so
// tests and the demo can observe that control left the kernel.
type ModeSwitcher struct {
	lock sync.Mutex
	rets []UserRetRecord
}

// UserRet completes the switch to user mode.
func (m *ModeSwitcher) UserRet(h *rv.Hart, satp uint64) {
	// sret: interrupts in user mode follow SPIE
	if h.Sstatus&rv.SstatusSPIE != 0 {
		h.Sstatus |= rv.SstatusSIE
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.rets = append(m.rets, UserRetRecord{
		HartID: h.ID,
		Satp:   satp,
	})
}

// UserRets returns the completed switches to user mode, in order.
func (m *ModeSwitcher) UserRets() []UserRetRecord {
	m.lock.Lock()
	defer m.lock.Unlock()

	rets := make([]UserRetRecord, len(m.rets))
	copy(rets, m.rets)

	return rets
}

// enterTrap emulates the hardware side of taking a supervisor trap:
// cause registers are loaded, SPIE saves the interrupt-enable state,
// interrupts turn off, and SPP records the prior privilege.
func enterTrap(h *rv.Hart, scause, stval, sepc uint64, fromUser bool) {
	h.Scause = scause
	h.Stval = stval
	h.Sepc = sepc

	if h.IntrGet() {
		h.Sstatus |= rv.SstatusSPIE
	} else {
		h.Sstatus &^= rv.SstatusSPIE
	}
	h.IntrOff()

	if fromUser {
		h.Sstatus &^= rv.SstatusSPP
	} else {
		h.Sstatus |= rv.SstatusSPP
	}
}

// sret emulates returning from a supervisor trap taken in supervisor
// mode: the interrupt-enable state comes back from SPIE.
func sret(h *rv.Hart) {
	if h.Sstatus&rv.SstatusSPIE != 0 {
		h.Sstatus |= rv.SstatusSIE
	}
}

// timerInterrupt vectors one timer expiration into the kernel trap
// handler. A drained timer budget stops the timer, which lets the event
// queue empty out and Run return.
func (s *Simulation) timerInterrupt(h *rv.Hart) {
	if s.timerBudget <= 0 {
		return
	}
	s.timerBudget--

	enterTrap(h, rv.ScauseSupervisorTimer, 0, h.Sepc, false)
	s.trap.KernelTrap(h)
	sret(h)
}

// externalInterrupt vectors a pending external interrupt into the
// kernel trap handler on the given hart.
func (s *Simulation) externalInterrupt(h *rv.Hart) {
	enterTrap(h, rv.ScauseSupervisorExternal, 0, h.Sepc, false)
	s.trap.KernelTrap(h)
	sret(h)
}

// UserFault delivers a memory access fault taken in user mode.
func (s *Simulation) UserFault(h *rv.Hart, scause, va, epc uint64) {
	enterTrap(h, scause, va, epc, true)
	s.trap.UserTrap(h)
}

// UserSyscall delivers an ecall taken in user mode on the hart's
// current process.
func (s *Simulation) UserSyscall(h *rv.Hart, num uint64, args ...uint64) {
	p := s.scheduler.CurrentProc(h.ID)
	tf := p.TrapFrame

	tf.Regs[regA7] = num
	for i, a := range args {
		tf.Regs[regA0+i] = a
	}

	enterTrap(h, rv.ScauseEcallFromUser, 0, tf.Epc, true)
	s.trap.UserTrap(h)
}

// irqLine connects the NIC model to the interrupt controller and
// vectors the interrupt into hart 0, the way the real wiring routes
// external interrupts.
type irqLine struct {
	s *Simulation
}

func (l *irqLine) Raise(irq int) {
	l.s.plic.Raise(irq)
	l.s.externalInterrupt(l.s.harts[0])
}

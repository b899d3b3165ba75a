package rv

// A Hart is one hardware execution context. It holds the supervisor CSRs
// the trap core reads and writes. A hart's registers are only touched by
// the code currently running on that hart, so no locking is needed here.
type Hart struct {
	ID int

	Sstatus uint64
	Sepc    uint64
	Scause  uint64
	Stval   uint64
	Stvec   uint64
	Satp    uint64
	Sip     uint64

	// Time is the current value of the platform timer as seen by this
	// hart. Stimecmp is the comparator; the CLINT raises a timer
	// interrupt once Time passes it.
	Time     uint64
	Stimecmp uint64
}

// IntrOn enables device interrupts on this hart.
func (h *Hart) IntrOn() {
	h.Sstatus |= SstatusSIE
}

// IntrOff disables device interrupts on this hart.
func (h *Hart) IntrOff() {
	h.Sstatus &^= SstatusSIE
}

// IntrGet reports whether device interrupts are enabled.
func (h *Hart) IntrGet() bool {
	return h.Sstatus&SstatusSIE != 0
}

// InSupervisor reports whether the previous privilege bit shows supervisor
// mode.
func (h *Hart) InSupervisor() bool {
	return h.Sstatus&SstatusSPP != 0
}

// WriteStimecmp programs the timer comparator. Writing the comparator also
// clears the pending timer condition.
func (h *Hart) WriteStimecmp(v uint64) {
	h.Stimecmp = v
	h.Sip &^= SipSTIP
}

// RaiseTimer marks a timer interrupt pending on this hart.
func (h *Hart) RaiseTimer() {
	h.Sip |= SipSTIP
}

// TimerPending reports whether a timer interrupt is pending.
func (h *Hart) TimerPending() bool {
	return h.Sip&SipSTIP != 0
}

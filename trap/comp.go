// Package trap implements the trap and interrupt dispatch core of the
// simulated kernel: entry from user mode, traps taken while already in
// supervisor mode, device-interrupt routing, the timer tick, and the
// demand-paging path for memory-mapped files.
package trap

import (
	"log"
	"sync"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
)

// Entry-point tokens. The simulated machine has no assembly vectors; these
// values stand in for the addresses that would go into stvec and the trap
// frame. They only need to be distinct and stable.
const (
	// KernelVecToken marks traps as routed to the kernel trap handler.
	KernelVecToken = uint64(0x80000004)

	// UserVecToken marks traps as routed to the user-mode entry in the
	// trampoline page.
	UserVecToken = rv.Trampoline

	// TrapEntryToken is the user trap handler entry recorded in the
	// trap frame for the next trap.
	TrapEntryToken = uint64(0x80000000)
)

// DispatchResult classifies what DevIntr found.
const (
	NotRecognized = 0
	OtherDevice   = 1
	TimerIntr     = 2
)

// A SyscallDispatcher executes one system call for a process.
type SyscallDispatcher interface {
	Syscall(p *proc.Proc)
}

// An InterruptController arbitrates external device interrupts.
type InterruptController interface {
	Claim(hartID int) int
	Complete(hartID int, irq int)
}

// An IntrHandler is a device driver's interrupt entry point.
type IntrHandler interface {
	Intr()
}

// A Scheduler provides the process-control primitives the trap core
// consumes. It is implemented outside this package.
type Scheduler interface {
	// CurrentProc returns the process running on the hart, or nil.
	CurrentProc(hartID int) *proc.Proc

	// Yield gives up the hart to the scheduler.
	Yield(hartID int)

	// Exit terminates the process. It does not tear the process down
	// inline; the caller must not touch the process afterwards.
	Exit(p *proc.Proc, status int)

	// Sleep blocks the calling context until the key is woken. The
	// lock is released while waiting and held again on return, so the
	// caller can check its condition without losing wakeups.
	Sleep(key any, lk *sync.Mutex)

	// Wakeup wakes all contexts sleeping on the given key.
	Wakeup(key any)
}

// A Filesystem brackets filesystem transactions for the demand-paging
// read. Both calls may sleep waiting for log space, so they must only be
// reached from process context.
type Filesystem interface {
	BeginOp()
	EndOp()
}

// A Trampoline performs the supervisor-to-user privilege switch. UserRet
// does not return control to the kernel.
type Trampoline interface {
	UserRet(h *rv.Hart, satp uint64)
}

// Comp is the trap dispatch core. One Comp serves all harts; per-process
// and per-hart state lives in the arguments, not in the Comp.
type Comp struct {
	*sim.ComponentBase

	Log *log.Logger

	sched Scheduler
	sys   SyscallDispatcher
	ic    InterruptController
	uart  IntrHandler
	disk  IntrHandler
	nic   IntrHandler
	alloc mem.Allocator
	fs    Filesystem
	tramp Trampoline

	timerInterval uint64

	ticksLock sync.Mutex
	ticks     uint64
}

// Ticks returns the current value of the shared tick counter.
func (c *Comp) Ticks() uint64 {
	c.ticksLock.Lock()
	defer c.ticksLock.Unlock()

	return c.ticks
}

// TickKey returns the key that tick waiters sleep on.
func (c *Comp) TickKey() any {
	return &c.ticks
}

// WaitTicks blocks until the tick counter has advanced by at least n
// from the point of the call. It returns false if the process is killed
// while waiting.
func (c *Comp) WaitTicks(p *proc.Proc, n uint64) bool {
	c.ticksLock.Lock()
	start := c.ticks
	c.ticksLock.Unlock()

	return c.WaitTicksFrom(p, start, n)
}

// WaitTicksFrom blocks until the tick counter has advanced by at least
// n past start. Callers that capture start before arming the timer
// cannot miss the wakeup.
func (c *Comp) WaitTicksFrom(p *proc.Proc, start, n uint64) bool {
	c.ticksLock.Lock()
	defer c.ticksLock.Unlock()

	for c.ticks-start < n {
		if p != nil && p.Killed() {
			return false
		}
		c.sched.Sleep(&c.ticks, &c.ticksLock)
	}

	return true
}

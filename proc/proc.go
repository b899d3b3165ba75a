// Package proc defines the process records that the trap core consumes:
// the trap frame, the killed flag, and the memory-mapped region table.
// Process lifecycle and scheduling live outside this module.
package proc

import (
	"sync"

	"github.com/sarchlab/rvkernel/mem"
)

// State is the scheduling state of a process.
type State int

// Process states.
const (
	Unused State = iota
	Used
	Sleeping
	Runnable
	Running
	Zombie
)

// A TrapFrame holds the saved user register state of a process, plus the
// kernel-context fields the trap-return path must populate before
// switching back to user mode.
type TrapFrame struct {
	KernelSatp   uint64 // kernel page table token
	KernelSP     uint64 // top of the process's kernel stack
	KernelTrap   uint64 // user trap handler entry token
	KernelHartID uint64

	Epc uint64 // saved user program counter

	// Saved user registers x1-x31.
	Regs [31]uint64
}

// A Proc is one process. The trap core mutates only the trap frame, the
// killed flag, and (through the page table handle) the address space.
type Proc struct {
	lock sync.Mutex

	Pid  int
	Name string

	killed bool
	state  State

	Kstack    uint64
	TrapFrame *TrapFrame
	PageTable mem.PageTable
	VMAs      [MaxVMA]VMA
}

// Killed reports whether the process has been marked killed.
func (p *Proc) Killed() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.killed
}

// SetKilled marks the process killed. Actual termination happens at the
// trap handler's designated termination check.
func (p *Proc) SetKilled() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.killed = true
}

// State returns the scheduling state of the process.
func (p *Proc) State() State {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.state
}

// SetState sets the scheduling state of the process.
func (p *Proc) SetState(s State) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.state = s
}

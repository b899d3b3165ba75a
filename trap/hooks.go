package trap

import "github.com/sarchlab/rvkernel/sim"

// HookPosUserTrap marks the completion of a trap taken from user mode.
var HookPosUserTrap = &sim.HookPos{Name: "User Trap"}

// HookPosKernelTrap marks the completion of a trap taken from supervisor
// mode.
var HookPosKernelTrap = &sim.HookPos{Name: "Kernel Trap"}

// HookPosPageIn marks a successful fault-driven page-in.
var HookPosPageIn = &sim.HookPos{Name: "Page In"}

// A Record describes one handled trap for hooks and tracing.
type Record struct {
	HartID  int
	Pid     int
	Scause  uint64
	Epc     uint64
	Stval   uint64
	Outcome string
}

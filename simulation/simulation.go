// Package simulation assembles the simulated machine: harts, interrupt
// controller, timer, NIC, the trap core, and the demo collaborators that
// stand in for the scheduler, syscall layer, and filesystem.
package simulation

import (
	"github.com/sarchlab/rvkernel/clint"
	"github.com/sarchlab/rvkernel/datarecording"
	"github.com/sarchlab/rvkernel/e1000"
	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/monitoring"
	"github.com/sarchlab/rvkernel/plic"
	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
	"github.com/sarchlab/rvkernel/trap"
)

// A Simulation owns the simulated machine and the services around it.
type Simulation struct {
	id string

	engine       sim.Engine
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	monitorURL   string

	allocator mem.Allocator
	harts     []*rv.Hart
	plic      *plic.Comp
	clint     *clint.Comp
	trap      *trap.Comp
	nic       *e1000.Comp
	nicDevice *e1000.Device

	scheduler *Scheduler
	syscalls  *SyscallTable
	journal   *Journal
	switcher  *ModeSwitcher
	net       *NetStack

	timerBudget int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the event engine the machine runs on.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// DataRecorder returns the data recorder used in the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil when monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the URL of the monitoring server, or an empty
// string when monitoring is disabled.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Allocator returns the physical page allocator.
func (s *Simulation) Allocator() mem.Allocator {
	return s.allocator
}

// Harts returns the simulated harts.
func (s *Simulation) Harts() []*rv.Hart {
	return s.harts
}

// Plic returns the interrupt controller.
func (s *Simulation) Plic() *plic.Comp {
	return s.plic
}

// Clint returns the timer.
func (s *Simulation) Clint() *clint.Comp {
	return s.clint
}

// Trap returns the trap dispatch core.
func (s *Simulation) Trap() *trap.Comp {
	return s.trap
}

// Nic returns the NIC driver.
func (s *Simulation) Nic() *e1000.Comp {
	return s.nic
}

// NicDevice returns the behavioral NIC model.
func (s *Simulation) NicDevice() *e1000.Device {
	return s.nicDevice
}

// Scheduler returns the demo scheduler.
func (s *Simulation) Scheduler() *Scheduler {
	return s.scheduler
}

// Syscalls returns the demo syscall table.
func (s *Simulation) Syscalls() *SyscallTable {
	return s.syscalls
}

// Net returns the demo network stack.
func (s *Simulation) Net() *NetStack {
	return s.net
}

// SetTimerBudget limits how many timer interrupts the machine delivers,
// so the event queue drains and Run terminates.
func (s *Simulation) SetTimerBudget(n int) {
	s.timerBudget = n
}

// Terminate flushes the recorded data.
func (s *Simulation) Terminate() {
	s.dataRecorder.Flush()
}

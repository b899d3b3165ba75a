package trap

import (
	"log"
	"os"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/sim"
)

// TimerIntervalCycles is the default timer rearm interval, roughly a
// tenth of a second of simulated time.
const TimerIntervalCycles = 1000000

// A Builder can build the trap dispatch core.
type Builder struct {
	logger        *log.Logger
	sched         Scheduler
	sys           SyscallDispatcher
	ic            InterruptController
	uart          IntrHandler
	disk          IntrHandler
	nic           IntrHandler
	alloc         mem.Allocator
	fs            Filesystem
	tramp         Trampoline
	timerInterval uint64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		logger:        log.New(os.Stderr, "", 0),
		timerInterval: TimerIntervalCycles,
	}
}

// WithLogger sets the logger for process-fatal diagnostics.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithScheduler sets the process-control provider.
func (b Builder) WithScheduler(s Scheduler) Builder {
	b.sched = s
	return b
}

// WithSyscallDispatcher sets the system-call dispatcher.
func (b Builder) WithSyscallDispatcher(s SyscallDispatcher) Builder {
	b.sys = s
	return b
}

// WithInterruptController sets the external interrupt controller.
func (b Builder) WithInterruptController(ic InterruptController) Builder {
	b.ic = ic
	return b
}

// WithUartHandler sets the UART interrupt handler.
func (b Builder) WithUartHandler(h IntrHandler) Builder {
	b.uart = h
	return b
}

// WithDiskHandler sets the virtio-disk interrupt handler.
func (b Builder) WithDiskHandler(h IntrHandler) Builder {
	b.disk = h
	return b
}

// WithNicHandler sets the NIC interrupt handler.
func (b Builder) WithNicHandler(h IntrHandler) Builder {
	b.nic = h
	return b
}

// WithAllocator sets the physical page allocator.
func (b Builder) WithAllocator(a mem.Allocator) Builder {
	b.alloc = a
	return b
}

// WithFilesystem sets the filesystem transaction provider.
func (b Builder) WithFilesystem(fs Filesystem) Builder {
	b.fs = fs
	return b
}

// WithTrampoline sets the privilege-switch provider.
func (b Builder) WithTrampoline(t Trampoline) Builder {
	b.tramp = t
	return b
}

// WithTimerInterval sets the timer rearm interval in cycles.
func (b Builder) WithTimerInterval(cycles uint64) Builder {
	b.timerInterval = cycles
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.sched == nil {
		panic("trap core requires a scheduler")
	}
	if b.ic == nil {
		panic("trap core requires an interrupt controller")
	}
}

// Build returns a newly created trap dispatch core.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		Log:           b.logger,
		sched:         b.sched,
		sys:           b.sys,
		ic:            b.ic,
		uart:          b.uart,
		disk:          b.disk,
		nic:           b.nic,
		alloc:         b.alloc,
		fs:            b.fs,
		tramp:         b.tramp,
		timerInterval: b.timerInterval,
	}

	return c
}

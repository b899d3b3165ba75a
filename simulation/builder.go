package simulation

import (
	"log"
	"os"

	"github.com/rs/xid"

	"github.com/sarchlab/rvkernel/clint"
	"github.com/sarchlab/rvkernel/datarecording"
	"github.com/sarchlab/rvkernel/e1000"
	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/monitoring"
	"github.com/sarchlab/rvkernel/plic"
	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
	"github.com/sarchlab/rvkernel/trap"
)

// Builder can be used to build a simulation.
type Builder struct {
	logger         *log.Logger
	monitorOn      bool
	monitorPort    int
	eventLogOn     bool
	outputFileName string
	numHarts       int
	memPages       int
	timerInterval  uint64
	timerBudget    int
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		logger:        log.New(os.Stderr, "", 0),
		monitorOn:     true,
		numHarts:      1,
		memPages:      1024,
		timerInterval: trap.TimerIntervalCycles,
		timerBudget:   8,
	}
}

// WithLogger sets the logger the machine writes diagnostics to.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithEventLogging logs every event the engine triggers.
func (b Builder) WithEventLogging() Builder {
	b.eventLogOn = true
	return b
}

// WithOutputFileName sets a custom output file name for the data
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithNumHarts sets the number of harts of the machine.
func (b Builder) WithNumHarts(n int) Builder {
	b.numHarts = n
	return b
}

// WithMemPages sets the number of physical pages of the machine.
func (b Builder) WithMemPages(n int) Builder {
	b.memPages = n
	return b
}

// WithTimerInterval sets the timer rearm interval in cycles.
func (b Builder) WithTimerInterval(cycles uint64) Builder {
	b.timerInterval = cycles
	return b
}

// WithTimerBudget sets how many timer interrupts the machine delivers
// before the timer stops.
func (b Builder) WithTimerBudget(n int) Builder {
	b.timerBudget = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
	if b.numHarts < 1 {
		panic("the machine needs at least one hart")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:          xid.New().String(),
		timerBudget: b.timerBudget,
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "rvkernel_sim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	s.engine = sim.NewSerialEngine()
	if b.eventLogOn {
		s.engine.AcceptHook(sim.NewEventLogger(b.logger))
	}

	b.buildMachine(s)
	b.registerDefaultSyscalls(s)
	b.attachRecordingHooks(s)

	s.nic.Init()

	if b.monitorOn {
		b.buildMonitor(s)
	}

	return s
}

func (b Builder) buildMachine(s *Simulation) {
	s.allocator = mem.NewAllocator(0x8000_0000, b.memPages)

	for i := 0; i < b.numHarts; i++ {
		s.harts = append(s.harts, &rv.Hart{
			ID:       i,
			Stimecmp: b.timerInterval,
		})
	}

	s.plic = plic.New("PLIC")
	s.scheduler = NewScheduler(s.allocator)
	s.syscalls = NewSyscallTable(b.logger)
	s.journal = &Journal{}
	s.switcher = &ModeSwitcher{}
	s.net = NewNetStack(s.allocator)

	s.nicDevice = e1000.MakeDeviceBuilder().
		WithEngine(s.engine).
		WithFreq(1 * sim.GHz).
		WithAllocator(s.allocator).
		WithIrqLine(&irqLine{s: s}).
		Build("NicDevice")

	s.nic = e1000.MakeBuilder().
		WithLogger(b.logger).
		WithRegisterWindow(s.nicDevice).
		WithAllocator(s.allocator).
		WithNetwork(s.net).
		Build("Nic")

	s.trap = trap.MakeBuilder().
		WithLogger(b.logger).
		WithScheduler(s.scheduler).
		WithSyscallDispatcher(s.syscalls).
		WithInterruptController(s.plic).
		WithNicHandler(s.nic).
		WithAllocator(s.allocator).
		WithFilesystem(s.journal).
		WithTrampoline(s.switcher).
		WithTimerInterval(b.timerInterval).
		Build("Trap")

	s.clint = clint.New("CLINT",
		s.engine, 1*sim.GHz, s.harts, s.timerInterrupt)
}

func (b Builder) registerDefaultSyscalls(s *Simulation) {
	s.syscalls.Register(SysGetpid,
		func(p *proc.Proc, _ [6]uint64) uint64 {
			return uint64(p.Pid)
		})

	s.syscalls.Register(SysUptime,
		func(_ *proc.Proc, _ [6]uint64) uint64 {
			return s.trap.Ticks()
		})

	s.syscalls.Register(SysSend,
		func(_ *proc.Proc, args [6]uint64) uint64 {
			length := int(args[1])

			page, err := s.allocator.AllocPage()
			if err != nil {
				return ^uint64(0)
			}
			for i := 0; i < length; i++ {
				page.Data[i] = byte(args[0])
			}

			if !s.nic.Transmit(page, length) {
				s.allocator.FreePage(page)
				return ^uint64(0)
			}

			return 0
		})
}

func (b Builder) attachRecordingHooks(s *Simulation) {
	rec := s.dataRecorder

	s.trap.AcceptHook(datarecording.NewHook(
		trap.HookPosUserTrap, rec, "user_traps", trap.Record{}))
	s.trap.AcceptHook(datarecording.NewHook(
		trap.HookPosKernelTrap, rec, "kernel_traps", trap.Record{}))
	s.trap.AcceptHook(datarecording.NewHook(
		trap.HookPosPageIn, rec, "page_ins", trap.Record{}))

	s.nic.AcceptHook(datarecording.NewHook(
		e1000.HookPosTx, rec, "nic_tx", e1000.PacketRecord{}))
	s.nic.AcceptHook(datarecording.NewHook(
		e1000.HookPosRx, rec, "nic_rx", e1000.PacketRecord{}))
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterComponent(s.trap)
	s.monitor.RegisterComponent(s.nic)
	s.monitor.RegisterComponent(s.nicDevice)
	s.monitor.RegisterComponent(s.plic)
	s.monitor.RegisterComponent(s.clint)

	s.monitorURL = s.monitor.StartServer()
}

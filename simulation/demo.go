package simulation

import (
	"errors"
	"log"

	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
)

const demoFrameLen = 60

// RunDemo drives a canned workload through the whole machine: a
// file-backed process pages its text in on first touch, makes a few
// system calls, gets preempted by the timer, and receives frames from
// the wire. Results go to the logger.
func (s *Simulation) RunDemo(logger *log.Logger) error {
	h := s.harts[0]

	p, err := s.launchDemoProc()
	if err != nil {
		return err
	}

	// first touch of the mapped file faults; the trap core pages it in
	s.UserFault(h, rv.ScauseLoadPageFault, 0x1500, 0x1000)
	if p.Killed() {
		return errors.New("demo process killed by its first fault")
	}
	if _, ok := p.PageTable.Translate(0x1000); !ok {
		return errors.New("fault handled but page not mapped")
	}
	logger.Printf("paged in va 0x1000, %d pages free", s.allocator.NumFree())

	s.UserSyscall(h, SysGetpid)
	logger.Printf("getpid() = %d", p.TrapFrame.Regs[regA0])

	s.UserSyscall(h, SysSend, 0xab, demoFrameLen)
	logger.Printf("send(0xab, %d) = %d",
		demoFrameLen, int64(p.TrapFrame.Regs[regA0]))

	// every received frame goes back out on the wire
	s.net.EnableEcho(s.nic)

	// block a context on the tick counter before the timer starts
	base := s.trap.Ticks()
	woke := make(chan bool, 1)
	go func() {
		woke <- s.trap.WaitTicksFrom(p, base, 1)
	}()

	s.clint.Start()

	for i := 0; i < 3; i++ {
		frame := make([]byte, demoFrameLen)
		for j := range frame {
			frame[j] = byte(i + 1)
		}
		if !s.nicDevice.Inject(frame) {
			return errors.New("rx ring full during demo")
		}
	}

	if err := s.engine.Run(); err != nil {
		return err
	}

	if !<-woke {
		return errors.New("tick waiter woke up killed")
	}

	s.UserSyscall(h, SysUptime)
	logger.Printf("uptime() = %d ticks, preempted %d times",
		p.TrapFrame.Regs[regA0], s.scheduler.Yields(h.ID))
	logger.Printf("received %d frames, put %d on the wire",
		len(s.net.Frames()), len(s.nicDevice.Sent()))
	logger.Printf("returned to user mode %d times",
		len(s.switcher.UserRets()))

	return nil
}

// launchDemoProc creates the demo process with a read-only file-backed
// region at 0x1000 and makes it current on hart 0.
func (s *Simulation) launchDemoProc() (*proc.Proc, error) {
	data := make([]byte, 2*rv.PageSize)
	for i := range data {
		data[i] = byte(i % 251)
	}

	p, err := s.scheduler.NewProc("demo")
	if err != nil {
		return nil, err
	}

	ok := s.scheduler.MapFile(p,
		0x1000, 2*rv.PageSize, proc.ProtRead, NewMemInode(data), 0)
	if !ok {
		return nil, errors.New("no free region slot for demo mapping")
	}

	p.TrapFrame.Epc = 0x1000
	s.scheduler.Run(s.harts[0].ID, p)

	return p, nil
}

package trap

import (
	"log"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
)

var _ = Describe("KernelTrap", func() {
	var (
		mockCtrl *gomock.Controller
		sched    *MockScheduler
		ic       *MockInterruptController
		uart     *MockIntrHandler
		disk     *MockIntrHandler
		nic      *MockIntrHandler
		c        *Comp
		h        *rv.Hart
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sched = NewMockScheduler(mockCtrl)
		ic = NewMockInterruptController(mockCtrl)
		uart = NewMockIntrHandler(mockCtrl)
		disk = NewMockIntrHandler(mockCtrl)
		nic = NewMockIntrHandler(mockCtrl)

		c = MakeBuilder().
			WithLogger(log.New(GinkgoWriter, "", 0)).
			WithScheduler(sched).
			WithInterruptController(ic).
			WithUartHandler(uart).
			WithDiskHandler(disk).
			WithNicHandler(nic).
			Build("Trap")

		h = &rv.Hart{ID: 0, Sstatus: rv.SstatusSPP}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic when entered from user mode", func() {
		h.Sstatus = 0

		Expect(func() {
			c.KernelTrap(h)
		}).To(Panic())
	})

	It("should panic when interrupts are still enabled", func() {
		h.Sstatus |= rv.SstatusSIE

		Expect(func() {
			c.KernelTrap(h)
		}).To(Panic())
	})

	It("should panic on an unrecognized cause", func() {
		h.Scause = 2 // illegal instruction
		h.Sepc = 0x80001234
		h.Stval = 0xbad

		Expect(func() {
			c.KernelTrap(h)
		}).To(Panic())
	})

	Context("timer interrupts", func() {
		BeforeEach(func() {
			h.Scause = rv.ScauseSupervisorTimer
			h.Time = 300
		})

		It("should yield when a process is running and restore the "+
			"saved registers afterwards", func() {
			h.Sepc = 0x80002000
			p := &proc.Proc{Pid: 5}
			sched.EXPECT().Wakeup(c.TickKey())
			sched.EXPECT().CurrentProc(0).Return(p)
			sched.EXPECT().Yield(0).Do(func(int) {
				// a nested trap while yielded clobbers the
				// hart registers
				h.Sepc = 0xdead
				h.Sstatus = 0
				h.Scause = 99
			})

			c.KernelTrap(h)

			Expect(h.Sepc).To(Equal(uint64(0x80002000)))
			Expect(h.Sstatus).To(Equal(rv.SstatusSPP))
			Expect(h.Stimecmp).To(
				Equal(uint64(300 + TimerIntervalCycles)))
		})

		It("should not yield when the hart is idle", func() {
			sched.EXPECT().Wakeup(c.TickKey())
			sched.EXPECT().CurrentProc(0).Return(nil)

			c.KernelTrap(h)
		})
	})

	Context("external interrupts", func() {
		BeforeEach(func() {
			h.Scause = rv.ScauseSupervisorExternal
		})

		It("should route the uart irq to the uart driver", func() {
			ic.EXPECT().Claim(0).Return(rv.UartIRQ)
			uart.EXPECT().Intr()
			ic.EXPECT().Complete(0, rv.UartIRQ)

			c.KernelTrap(h)
		})

		It("should route the disk irq to the disk driver", func() {
			ic.EXPECT().Claim(0).Return(rv.VirtioIRQ)
			disk.EXPECT().Intr()
			ic.EXPECT().Complete(0, rv.VirtioIRQ)

			c.KernelTrap(h)
		})

		It("should route the nic irq to the nic driver", func() {
			ic.EXPECT().Claim(0).Return(rv.E1000IRQ)
			nic.EXPECT().Intr()
			ic.EXPECT().Complete(0, rv.E1000IRQ)

			c.KernelTrap(h)
		})

		It("should complete an unexpected irq without dispatching",
			func() {
				ic.EXPECT().Claim(0).Return(7)
				ic.EXPECT().Complete(0, 7)

				c.KernelTrap(h)
			})

		It("should not complete a spurious claim", func() {
			ic.EXPECT().Claim(0).Return(0)

			c.KernelTrap(h)
		})
	})
})

var _ = Describe("ClockIntr", func() {
	var (
		mockCtrl *gomock.Controller
		sched    *MockScheduler
		ic       *MockInterruptController
		c        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sched = NewMockScheduler(mockCtrl)
		ic = NewMockInterruptController(mockCtrl)

		c = MakeBuilder().
			WithLogger(log.New(GinkgoWriter, "", 0)).
			WithScheduler(sched).
			WithInterruptController(ic).
			WithTimerInterval(100).
			Build("Trap")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should advance the tick counter once per interrupt on hart 0",
		func() {
			h := &rv.Hart{ID: 0}
			sched.EXPECT().Wakeup(c.TickKey()).Times(3)

			for i := 0; i < 3; i++ {
				h.Time += 100
				c.ClockIntr(h)
			}

			Expect(c.Ticks()).To(Equal(uint64(3)))
			Expect(h.Stimecmp).To(Equal(uint64(400)))
		})

	It("should rearm the comparator without ticking on other harts",
		func() {
			h := &rv.Hart{ID: 1, Time: 250}

			c.ClockIntr(h)

			Expect(c.Ticks()).To(BeZero())
			Expect(h.Stimecmp).To(Equal(uint64(350)))
		})
})

var _ = Describe("WaitTicks", func() {
	var (
		mockCtrl *gomock.Controller
		sched    *MockScheduler
		ic       *MockInterruptController
		c        *Comp
		p        *proc.Proc
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sched = NewMockScheduler(mockCtrl)
		ic = NewMockInterruptController(mockCtrl)

		c = MakeBuilder().
			WithLogger(log.New(GinkgoWriter, "", 0)).
			WithScheduler(sched).
			WithInterruptController(ic).
			WithTimerInterval(100).
			Build("Trap")

		p = &proc.Proc{Pid: 1, Name: "waiter"}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should return without sleeping when the counter already passed",
		func() {
			h := &rv.Hart{ID: 0, Time: 100}
			sched.EXPECT().Wakeup(c.TickKey())
			c.ClockIntr(h)

			Expect(c.WaitTicksFrom(p, 0, 1)).To(BeTrue())
		})

	It("should sleep until the counter advances", func() {
		h := &rv.Hart{ID: 0, Time: 100}

		sched.EXPECT().Wakeup(c.TickKey())
		sched.EXPECT().
			Sleep(c.TickKey(), gomock.Any()).
			Do(func(_ any, lk *sync.Mutex) {
				// the tick arrives while the waiter is asleep
				lk.Unlock()
				c.ClockIntr(h)
				lk.Lock()
			})

		Expect(c.WaitTicks(p, 1)).To(BeTrue())
		Expect(c.Ticks()).To(Equal(uint64(1)))
	})

	It("should give up when the process is killed", func() {
		p.SetKilled()

		Expect(c.WaitTicks(p, 1)).To(BeFalse())
	})
})

package simulation

import (
	"io"
	"log"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvkernel/e1000"
)

var _ = Describe("Simulation", func() {
	var (
		logger *log.Logger
		s      *Simulation
	)

	BeforeEach(func() {
		logger = log.New(io.Discard, "", 0)
		s = MakeBuilder().
			WithLogger(logger).
			WithoutMonitoring().
			WithOutputFileName(filepath.Join(GinkgoT().TempDir(), "sim")).
			WithTimerInterval(100).
			WithTimerBudget(3).
			Build()
	})

	AfterEach(func() {
		s.Terminate()
	})

	It("should wire up the whole machine", func() {
		Expect(s.ID()).NotTo(BeEmpty())
		Expect(s.Engine()).NotTo(BeNil())
		Expect(s.Trap()).NotTo(BeNil())
		Expect(s.Nic()).NotTo(BeNil())
		Expect(s.NicDevice()).NotTo(BeNil())
		Expect(s.Plic()).NotTo(BeNil())
		Expect(s.Clint()).NotTo(BeNil())
		Expect(s.Scheduler()).NotTo(BeNil())
		Expect(s.Harts()).To(HaveLen(1))
		Expect(s.Harts()[0].Stimecmp).To(Equal(uint64(100)))
		Expect(s.MonitorURL()).To(BeEmpty())
	})

	It("should have initialized the NIC during build", func() {
		dev := s.NicDevice()
		Expect(dev.Read(e1000.RegTCTL) & uint32(e1000.TctlEN)).
			NotTo(BeZero())
		Expect(dev.Read(e1000.RegRCTL) & uint32(e1000.RctlEN)).
			NotTo(BeZero())
		Expect(dev.Read(e1000.RegRDT)).To(Equal(uint32(e1000.RingCap - 1)))
		Expect(dev.Read(e1000.RegIMS)).To(Equal(uint32(e1000.IntRXDW)))
	})

	It("should create the recording tables", func() {
		Expect(s.DataRecorder().ListTables()).To(ContainElements(
			"user_traps", "kernel_traps", "page_ins", "nic_tx", "nic_rx"))
	})

	Context("running the demo workload", func() {
		BeforeEach(func() {
			Expect(s.RunDemo(logger)).To(Succeed())
		})

		It("should deliver every budgeted timer tick", func() {
			Expect(s.Trap().Ticks()).To(Equal(uint64(3)))
			Expect(s.Scheduler().Yields(0)).To(Equal(3))
			Expect(s.Harts()[0].Stimecmp).To(Equal(uint64(400)))
		})

		It("should deliver injected frames through the interrupt path", func() {
			frames := s.Net().Frames()
			Expect(frames).To(HaveLen(3))
			for i, frame := range frames {
				Expect(frame).To(HaveLen(demoFrameLen))
				Expect(frame[0]).To(Equal(byte(i + 1)))
			}
		})

		It("should put the sent and echoed frames on the wire", func() {
			sent := s.NicDevice().Sent()
			Expect(sent).To(HaveLen(4))
			Expect(sent[0][0]).To(Equal(byte(0xab)))
			Expect(sent[1][0]).To(Equal(byte(1)))
			Expect(sent[3][0]).To(Equal(byte(3)))
		})

		It("should bracket the page-in read in a transaction", func() {
			Expect(s.journal.Ops()).To(Equal(1))
		})

		It("should return to user mode after each user trap", func() {
			rets := s.switcher.UserRets()
			Expect(rets).To(HaveLen(4))
			for _, r := range rets {
				Expect(r.HartID).To(Equal(0))
				Expect(r.Satp).NotTo(BeZero())
			}
		})

		It("should keep the demo process alive", func() {
			Expect(s.Scheduler().Exits()).To(BeEmpty())
			p := s.Scheduler().CurrentProc(0)
			Expect(p).NotTo(BeNil())
			Expect(p.Killed()).To(BeFalse())
		})
	})
})

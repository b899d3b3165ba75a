package rv

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Hart", func() {
	var h *Hart

	BeforeEach(func() {
		h = &Hart{ID: 0}
	})

	It("should toggle the interrupt enable bit", func() {
		Expect(h.IntrGet()).To(BeFalse())

		h.IntrOn()
		Expect(h.IntrGet()).To(BeTrue())
		Expect(h.Sstatus & SstatusSIE).NotTo(BeZero())

		h.IntrOff()
		Expect(h.IntrGet()).To(BeFalse())
	})

	It("should clear the pending timer condition on comparator write", func() {
		h.RaiseTimer()
		Expect(h.TimerPending()).To(BeTrue())

		h.WriteStimecmp(1000000)

		Expect(h.TimerPending()).To(BeFalse())
		Expect(h.Stimecmp).To(Equal(uint64(1000000)))
	})
})

var _ = Describe("Addressing helpers", func() {
	It("should round addresses to page boundaries", func() {
		Expect(PageRoundDown(0x1500)).To(Equal(uint64(0x1000)))
		Expect(PageRoundDown(0x1000)).To(Equal(uint64(0x1000)))
		Expect(PageRoundUp(0x1001)).To(Equal(uint64(0x2000)))
		Expect(PageRoundUp(0x1000)).To(Equal(uint64(0x1000)))
	})

	It("should build satp values", func() {
		Expect(MakeSatp(0x8020_0000)).To(
			Equal(SatpSv39 | uint64(0x80200)))
	})
})

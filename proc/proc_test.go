package proc

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Proc", func() {
	It("should carry the killed mark", func() {
		p := &Proc{Pid: 3}

		Expect(p.Killed()).To(BeFalse())
		p.SetKilled()
		Expect(p.Killed()).To(BeTrue())
	})
})

var _ = Describe("VMA", func() {
	It("should report range membership", func() {
		v := VMA{Addr: 0x1000, Len: 0x2000, Valid: true}

		Expect(v.Contains(0x1000)).To(BeTrue())
		Expect(v.Contains(0x2fff)).To(BeTrue())
		Expect(v.Contains(0x3000)).To(BeFalse())
		Expect(v.Contains(0xfff)).To(BeFalse())
	})
})

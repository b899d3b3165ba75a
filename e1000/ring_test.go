package e1000

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvkernel/mem"
)

var _ = Describe("Ring", func() {
	var (
		page *mem.Page
		ring *Ring
	)

	BeforeEach(func() {
		page = &mem.Page{Addr: 0x8000_0000, Data: make([]byte, 4096)}
		ring = NewRing(page)
	})

	It("should lay descriptors out the way the device reads them", func() {
		ring.SetDesc(1, Descriptor{
			Addr:   0x8765_4321_0000_2000,
			Length: 0x1234,
			Cmd:    TxdCmdEOP | TxdCmdRS,
			Status: StatDD,
		})

		b := page.Data[descBytes:]
		Expect(b[0]).To(Equal(byte(0x00)))
		Expect(b[2]).To(Equal(byte(0x00)))
		Expect(b[3]).To(Equal(byte(0x20)))
		Expect(b[7]).To(Equal(byte(0x87)))
		Expect(b[8]).To(Equal(byte(0x34)))
		Expect(b[9]).To(Equal(byte(0x12)))
		Expect(b[10]).To(Equal(byte(TxdCmdEOP | TxdCmdRS)))
		Expect(b[11]).To(Equal(byte(StatDD)))

		Expect(ring.Desc(1)).To(Equal(Descriptor{
			Addr:   0x8765_4321_0000_2000,
			Length: 0x1234,
			Cmd:    TxdCmdEOP | TxdCmdRS,
			Status: StatDD,
		}))
	})

	It("should fit the device's alignment requirement", func() {
		Expect(ring.Bytes() % descAlign).To(BeZero())
	})

	It("should forget descriptors and buffers on reset", func() {
		ring.SetDesc(0, Descriptor{Addr: 0x8000_1000, Status: StatDD})
		ring.SetBuf(0, page)

		ring.Reset()

		Expect(ring.Desc(0)).To(Equal(Descriptor{}))
		Expect(ring.Buf(0)).To(BeNil())
	})
})

package mem

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvkernel/rv"
)

var _ = ginkgo.Describe("Allocator", func() {
	var a Allocator

	ginkgo.BeforeEach(func() {
		a = NewAllocator(0x8000_0000, 4)
	})

	ginkgo.It("should hand out zero-filled pages", func() {
		p, err := a.AllocPage()

		Expect(err).To(BeNil())
		Expect(p.Data).To(HaveLen(rv.PageSize))
		for _, b := range p.Data {
			Expect(b).To(BeZero())
		}
	})

	ginkgo.It("should run out of pages", func() {
		for i := 0; i < 4; i++ {
			_, err := a.AllocPage()
			Expect(err).To(BeNil())
		}

		_, err := a.AllocPage()
		Expect(err).To(MatchError(ErrOutOfMemory))
	})

	ginkgo.It("should reuse freed pages, zeroed again", func() {
		p, _ := a.AllocPage()
		p.Data[0] = 0xff
		addr := p.Addr

		a.FreePage(p)
		q, err := a.AllocPage()

		Expect(err).To(BeNil())
		Expect(q.Addr).To(Equal(addr))
		Expect(q.Data[0]).To(BeZero())
	})

	ginkgo.It("should look up pages by any inner address", func() {
		p, _ := a.AllocPage()

		Expect(a.Lookup(p.Addr + 100)).To(BeIdenticalTo(p))
		Expect(a.Lookup(p.Addr + rv.PageSize)).NotTo(BeIdenticalTo(p))
	})

	ginkgo.It("should panic on freeing an unallocated page", func() {
		Expect(func() {
			a.FreePage(&Page{Addr: 0x1234_0000})
		}).To(Panic())
	})
})

var _ = ginkgo.Describe("PageTable", func() {
	var pt PageTable

	ginkgo.BeforeEach(func() {
		pt = NewPageTable(0x8700_0000)
	})

	ginkgo.It("should install and translate mappings", func() {
		err := pt.Map(0x1000, 0x8000_1000, rv.PTERead|rv.PTEUser)
		Expect(err).To(BeNil())

		entry, found := pt.Translate(0x1234)
		Expect(found).To(BeTrue())
		Expect(entry.PAddr).To(Equal(uint64(0x8000_1000)))
		Expect(entry.Flags).To(
			Equal(rv.PTERead | rv.PTEUser | rv.PTEValid))
	})

	ginkgo.It("should refuse remapping", func() {
		Expect(pt.Map(0x1000, 0x8000_1000, rv.PTERead)).To(BeNil())
		Expect(pt.Map(0x1800, 0x8000_2000, rv.PTERead)).To(
			MatchError(ErrRemap))
	})

	ginkgo.It("should refuse out-of-range addresses", func() {
		Expect(pt.Map(rv.MaxVA, 0x8000_1000, rv.PTERead)).To(
			MatchError(ErrVAOutOfRange))
	})

	ginkgo.It("should unmap", func() {
		_ = pt.Map(0x1000, 0x8000_1000, rv.PTERead)
		pt.Unmap(0x1000)

		_, found := pt.Translate(0x1000)
		Expect(found).To(BeFalse())
	})
})

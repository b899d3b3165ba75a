package simulation

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
)

var _ = Describe("Scheduler", func() {
	var (
		alloc mem.Allocator
		sched *Scheduler
	)

	BeforeEach(func() {
		alloc = mem.NewAllocator(0x8000_0000, 8)
		sched = NewScheduler(alloc)
	})

	It("should give each process a pid, a kernel stack, and a page table", func() {
		p1, err := sched.NewProc("one")
		Expect(err).NotTo(HaveOccurred())
		p2, err := sched.NewProc("two")
		Expect(err).NotTo(HaveOccurred())

		Expect(p1.Pid).To(Equal(1))
		Expect(p2.Pid).To(Equal(2))
		Expect(p1.Kstack).NotTo(BeZero())
		Expect(p1.PageTable).NotTo(BeNil())
		Expect(p1.State()).To(Equal(proc.Runnable))
		Expect(alloc.NumFree()).To(Equal(4))
	})

	It("should track the current process per hart", func() {
		p, err := sched.NewProc("one")
		Expect(err).NotTo(HaveOccurred())

		Expect(sched.CurrentProc(0)).To(BeNil())
		sched.Run(0, p)

		Expect(sched.CurrentProc(0)).To(BeIdenticalTo(p))
		Expect(sched.CurrentProc(1)).To(BeNil())
		Expect(p.State()).To(Equal(proc.Running))
	})

	It("should record exits and clear the hart", func() {
		p, err := sched.NewProc("one")
		Expect(err).NotTo(HaveOccurred())
		sched.Run(0, p)

		sched.Exit(p, -1)

		Expect(sched.CurrentProc(0)).To(BeNil())
		Expect(p.State()).To(Equal(proc.Zombie))
		Expect(sched.Exits()).To(Equal([]ExitRecord{{Pid: 1, Status: -1}}))
	})

	It("should wake sleepers on the key", func() {
		var key int
		woke := make(chan struct{})

		go func() {
			sched.Sleep(&key, nil)
			close(woke)
		}()

		Consistently(woke).ShouldNot(BeClosed())
		sched.Wakeup(&key)
		Eventually(woke).Should(BeClosed())
	})

	It("should release the caller's lock while sleeping", func() {
		var (
			key  int
			lk   sync.Mutex
			cond = false
		)
		woke := make(chan struct{})

		lk.Lock()
		go func() {
			defer GinkgoRecover()

			lk.Lock()
			for !cond {
				sched.Sleep(&key, &lk)
			}
			lk.Unlock()
			close(woke)
		}()
		lk.Unlock()

		lk.Lock()
		cond = true
		lk.Unlock()
		sched.Wakeup(&key)

		Eventually(woke).Should(BeClosed())
	})

	It("should not wake sleepers on other keys", func() {
		var key, other int
		woke := make(chan struct{})

		go func() {
			sched.Sleep(&key, nil)
			close(woke)
		}()

		sched.Wakeup(&other)
		Consistently(woke).ShouldNot(BeClosed())

		sched.Wakeup(&key)
		Eventually(woke).Should(BeClosed())
	})

	Describe("MapFile", func() {
		var p *proc.Proc

		BeforeEach(func() {
			var err error
			p, err = sched.NewProc("one")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should install the region in the first free slot", func() {
			ip := NewMemInode(make([]byte, rv.PageSize))

			ok := sched.MapFile(p, 0x1234, rv.PageSize, proc.ProtRead, ip, 0)

			Expect(ok).To(BeTrue())
			Expect(p.VMAs[0].Valid).To(BeTrue())
			Expect(p.VMAs[0].Addr).To(Equal(uint64(0x1000)))
			Expect(p.VMAs[0].Len).To(Equal(uint64(rv.PageSize)))
			Expect(p.VMAs[0].File.Inode).To(BeIdenticalTo(ip))
			Expect(p.VMAs[1].Valid).To(BeFalse())
		})

		It("should fail once every slot is taken", func() {
			ip := NewMemInode(make([]byte, rv.PageSize))

			for i := 0; i < proc.MaxVMA; i++ {
				ok := sched.MapFile(p,
					uint64(0x1000*(i+1)), rv.PageSize,
					proc.ProtRead, ip, 0)
				Expect(ok).To(BeTrue())
			}

			ok := sched.MapFile(p, 0x100000, rv.PageSize,
				proc.ProtRead, ip, 0)
			Expect(ok).To(BeFalse())
		})
	})
})

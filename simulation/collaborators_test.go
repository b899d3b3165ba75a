package simulation

import (
	"io"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/proc"
)

var _ = Describe("SyscallTable", func() {
	var (
		table *SyscallTable
		p     *proc.Proc
	)

	BeforeEach(func() {
		table = NewSyscallTable(log.New(io.Discard, "", 0))
		p = &proc.Proc{
			Pid:       3,
			Name:      "caller",
			TrapFrame: &proc.TrapFrame{},
		}
	})

	It("should dispatch by the number in a7", func() {
		table.Register(SysGetpid, func(p *proc.Proc, _ [6]uint64) uint64 {
			return uint64(p.Pid)
		})

		p.TrapFrame.Regs[regA7] = SysGetpid
		table.Syscall(p)

		Expect(p.TrapFrame.Regs[regA0]).To(Equal(uint64(3)))
	})

	It("should pass the argument registers through", func() {
		var got [6]uint64
		table.Register(SysSend, func(_ *proc.Proc, args [6]uint64) uint64 {
			got = args
			return 0
		})

		p.TrapFrame.Regs[regA7] = SysSend
		p.TrapFrame.Regs[regA0] = 0xab
		p.TrapFrame.Regs[regA0+1] = 60
		table.Syscall(p)

		Expect(got[0]).To(Equal(uint64(0xab)))
		Expect(got[1]).To(Equal(uint64(60)))
	})

	It("should return an error value for an unknown number", func() {
		p.TrapFrame.Regs[regA7] = 999
		table.Syscall(p)

		Expect(p.TrapFrame.Regs[regA0]).To(Equal(^uint64(0)))
	})
})

var _ = Describe("MemInode", func() {
	var ip *MemInode

	BeforeEach(func() {
		data := make([]byte, 100)
		for i := range data {
			data[i] = byte(i)
		}
		ip = NewMemInode(data)
	})

	It("should read content at an offset", func() {
		buf := make([]byte, 10)

		ip.Lock()
		n, err := ip.ReadAt(buf, 40)
		ip.Unlock()

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(10))
		Expect(buf[0]).To(Equal(byte(40)))
	})

	It("should report a short read past the end as no error", func() {
		buf := make([]byte, 10)

		ip.Lock()
		n, err := ip.ReadAt(buf, 200)
		ip.Unlock()

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))
	})

	It("should panic when read without the lock held", func() {
		buf := make([]byte, 10)

		Expect(func() {
			_, _ = ip.ReadAt(buf, 0)
		}).To(Panic())
	})
})

var _ = Describe("Journal", func() {
	var j *Journal

	BeforeEach(func() {
		j = &Journal{}
	})

	It("should count opened transactions", func() {
		j.BeginOp()
		j.EndOp()
		j.BeginOp()
		j.EndOp()

		Expect(j.Ops()).To(Equal(2))
	})

	It("should panic on an unbalanced EndOp", func() {
		Expect(func() { j.EndOp() }).To(Panic())
	})
})

type recordingTransmitter struct {
	frames   [][]byte
	ringFull bool
}

func (t *recordingTransmitter) Transmit(buf *mem.Page, length int) bool {
	if t.ringFull {
		return false
	}

	frame := make([]byte, length)
	copy(frame, buf.Data)
	t.frames = append(t.frames, frame)

	return true
}

var _ = Describe("NetStack", func() {
	var (
		alloc mem.Allocator
		stack *NetStack
	)

	BeforeEach(func() {
		alloc = mem.NewAllocator(0x8000_0000, 4)
		stack = NewNetStack(alloc)
	})

	deliver := func(fill byte, length int) {
		page, err := alloc.AllocPage()
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < length; i++ {
			page.Data[i] = fill
		}
		stack.Rx(page, length)
	}

	It("should record frames and return the buffers", func() {
		deliver(0x11, 60)
		deliver(0x22, 42)

		frames := stack.Frames()
		Expect(frames).To(HaveLen(2))
		Expect(frames[0]).To(HaveLen(60))
		Expect(frames[0][0]).To(Equal(byte(0x11)))
		Expect(frames[1]).To(HaveLen(42))
		Expect(alloc.NumFree()).To(Equal(4))
	})

	It("should echo frames when echo is enabled", func() {
		nic := &recordingTransmitter{}
		stack.EnableEcho(nic)

		deliver(0x33, 60)

		Expect(nic.frames).To(HaveLen(1))
		Expect(nic.frames[0][0]).To(Equal(byte(0x33)))
		// the echo buffer is owned by the transmitter now
		Expect(alloc.NumFree()).To(Equal(3))
	})

	It("should drop the echo when the ring is full", func() {
		nic := &recordingTransmitter{ringFull: true}
		stack.EnableEcho(nic)

		deliver(0x44, 60)

		Expect(stack.Frames()).To(HaveLen(1))
		Expect(alloc.NumFree()).To(Equal(4))
	})
})

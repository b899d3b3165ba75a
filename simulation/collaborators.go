package simulation

import (
	"log"
	"sync"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/proc"
)

// Registers the syscall layer reads arguments from and writes results
// to, as indexes into TrapFrame.Regs (x1-x31).
const (
	regA0 = 9  // x10
	regA7 = 16 // x17
)

// Demo syscall numbers.
const (
	SysGetpid = 11
	SysUptime = 14
	SysSend   = 22
)

// A SyscallFn executes one system call and returns the value placed in
// a0.
type SyscallFn func(p *proc.Proc, args [6]uint64) uint64

// SyscallTable dispatches system calls by number. An unknown number
// returns an error value instead of killing the process.
type SyscallTable struct {
	Log *log.Logger

	lock     sync.Mutex
	handlers map[uint64]SyscallFn
}

// NewSyscallTable creates an empty syscall table.
func NewSyscallTable(logger *log.Logger) *SyscallTable {
	return &SyscallTable{
		Log:      logger,
		handlers: make(map[uint64]SyscallFn),
	}
}

// Register installs a handler for a syscall number.
func (t *SyscallTable) Register(num uint64, fn SyscallFn) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.handlers[num] = fn
}

// Syscall executes the call the process's a7 register names.
func (t *SyscallTable) Syscall(p *proc.Proc) {
	tf := p.TrapFrame
	num := tf.Regs[regA7]

	t.lock.Lock()
	fn := t.handlers[num]
	t.lock.Unlock()

	if fn == nil {
		t.Log.Printf("%d %s: unknown sys call %d\n",
			p.Pid, p.Name, num)
		tf.Regs[regA0] = ^uint64(0)
		return
	}

	var args [6]uint64
	copy(args[:], tf.Regs[regA0:regA0+6])

	tf.Regs[regA0] = fn(p, args)
}

// A MemInode is an in-memory file that can back mapped regions. A read
// past the end of the file fills nothing and reports no error.
type MemInode struct {
	mu     sync.Mutex
	locked bool
	data   []byte
}

// NewMemInode creates an inode holding the given content.
func NewMemInode(data []byte) *MemInode {
	return &MemInode{data: data}
}

// Lock locks the inode.
func (i *MemInode) Lock() {
	i.mu.Lock()
	i.locked = true
}

// Unlock unlocks the inode.
func (i *MemInode) Unlock() {
	i.locked = false
	i.mu.Unlock()
}

// ReadAt reads file content at the offset. The inode must be locked.
func (i *MemInode) ReadAt(p []byte, off int64) (int, error) {
	if !i.locked {
		log.Panic("meminode: read without holding the inode lock")
	}

	if off >= int64(len(i.data)) {
		return 0, nil
	}

	return copy(p, i.data[off:]), nil
}

// Size returns the file size.
func (i *MemInode) Size() int {
	return len(i.data)
}

// A Journal stands in for the filesystem log layer: it brackets
// transactions and panics on unbalanced bracketing.
type Journal struct {
	lock        sync.Mutex
	outstanding int
	ops         int
}

// BeginOp opens a filesystem transaction.
func (j *Journal) BeginOp() {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.outstanding++
	j.ops++
}

// EndOp closes a filesystem transaction.
func (j *Journal) EndOp() {
	j.lock.Lock()
	defer j.lock.Unlock()

	if j.outstanding == 0 {
		log.Panic("journal: EndOp without BeginOp")
	}
	j.outstanding--
}

// Ops returns how many transactions have been opened.
func (j *Journal) Ops() int {
	j.lock.Lock()
	defer j.lock.Unlock()

	return j.ops
}

// NetStack is the demo network layer above the NIC driver. It records
// every received frame and, in echo mode, transmits each frame back
// out.
type NetStack struct {
	alloc mem.Allocator

	lock   sync.Mutex
	echo   bool
	nic    Transmitter
	frames [][]byte
}

// A Transmitter accepts outbound frames.
type Transmitter interface {
	Transmit(buf *mem.Page, length int) bool
}

// NewNetStack creates a network stack that returns delivered buffers to
// the allocator.
func NewNetStack(alloc mem.Allocator) *NetStack {
	return &NetStack{alloc: alloc}
}

// EnableEcho makes the stack transmit every received frame back out
// through the given transmitter.
func (n *NetStack) EnableEcho(nic Transmitter) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.echo = true
	n.nic = nic
}

// Rx takes delivery of one inbound frame. It owns the buffer and
// returns it to the allocator once the content is copied out.
func (n *NetStack) Rx(buf *mem.Page, length int) {
	frame := make([]byte, length)
	copy(frame, buf.Data)
	n.alloc.FreePage(buf)

	n.lock.Lock()
	n.frames = append(n.frames, frame)
	echo := n.echo
	nic := n.nic
	n.lock.Unlock()

	if !echo {
		return
	}

	page, err := n.alloc.AllocPage()
	if err != nil {
		return
	}
	copy(page.Data, frame)

	if !nic.Transmit(page, length) {
		// ring full, drop the echo
		n.alloc.FreePage(page)
	}
}

// Frames returns the frames received so far, in order.
func (n *NetStack) Frames() [][]byte {
	n.lock.Lock()
	defer n.lock.Unlock()

	frames := make([][]byte, len(n.frames))
	copy(frames, n.frames)

	return frames
}

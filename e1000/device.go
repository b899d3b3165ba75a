package e1000

import (
	"log"
	"sync"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
)

// An IrqLine raises external interrupts toward the interrupt controller.
type IrqLine interface {
	Raise(irq int)
}

// Device is a behavioral model of the 82540. It backs the register
// window with a real register file, consumes transmit descriptors as
// simulation time advances, and DMAs injected frames into the receive
// ring. DMA addresses resolve through the same allocator the driver
// takes its pages from.
type Device struct {
	*sim.TickingComponent

	alloc mem.Allocator
	irq   IrqLine

	lock sync.Mutex
	regs [NumRegs]uint32
	sent [][]byte
}

// Read returns the register value.
func (d *Device) Read(reg int) uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.regs[reg]
}

// Write writes the register. A reset through CTL clears the whole
// register file. ICR is write-one-to-clear. A tail write on an enabled
// transmitter queues descriptor processing.
func (d *Device) Write(reg int, v uint32) {
	d.lock.Lock()

	switch reg {
	case RegICR:
		d.regs[RegICR] &^= v
	case RegCTL:
		if v&CtlRST != 0 {
			d.regs = [NumRegs]uint32{}
			v &^= CtlRST // reset completes immediately
		}
		d.regs[RegCTL] = v
	default:
		d.regs[reg] = v
	}

	tickNeeded := reg == RegTDT && d.regs[RegTCTL]&TctlEN != 0

	d.lock.Unlock()

	if tickNeeded {
		d.TickLater()
	}
}

// Barrier is a no-op. The model's register accesses are already
// sequentially consistent under the device lock.
func (d *Device) Barrier() {}

// Tick sends one pending transmit descriptor per cycle.
func (d *Device) Tick() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.regs[RegTCTL]&TctlEN == 0 {
		return false
	}

	head := int(d.regs[RegTDH]) % RingCap
	tail := int(d.regs[RegTDT]) % RingCap
	if head == tail {
		return false
	}

	ring := d.ringAt(d.regs[RegTDBAL])
	desc := ring.Desc(head)

	buf := d.alloc.Lookup(desc.Addr)
	if buf == nil {
		log.Panicf("%s: tx descriptor %d points outside memory",
			d.Name(), head)
	}

	frame := make([]byte, desc.Length)
	copy(frame, buf.Data)
	d.sent = append(d.sent, frame)

	if desc.Cmd&TxdCmdRS != 0 {
		desc.Status |= StatDD
		ring.SetDesc(head, desc)
	}

	d.regs[RegTDH] = uint32((head + 1) % RingCap)

	return true
}

// Inject delivers one inbound frame to the receive ring, as if it
// arrived on the wire. It reports false when the receiver is disabled
// or the ring has no free descriptor, in which case the frame is
// dropped.
func (d *Device) Inject(frame []byte) bool {
	d.lock.Lock()

	if d.regs[RegRCTL]&RctlEN == 0 {
		d.lock.Unlock()
		return false
	}

	head := int(d.regs[RegRDH]) % RingCap
	tail := int(d.regs[RegRDT]) % RingCap
	if head == tail {
		d.lock.Unlock()
		return false
	}

	ring := d.ringAt(d.regs[RegRDBAL])
	desc := ring.Desc(head)

	buf := d.alloc.Lookup(desc.Addr)
	if buf == nil {
		log.Panicf("%s: rx descriptor %d points outside memory",
			d.Name(), head)
	}
	copy(buf.Data, frame)

	desc.Length = uint16(len(frame))
	desc.Status |= StatDD
	ring.SetDesc(head, desc)

	d.regs[RegRDH] = uint32((head + 1) % RingCap)
	d.regs[RegICR] |= IntRXDW

	raise := d.regs[RegIMS]&IntRXDW != 0 && d.irq != nil

	d.lock.Unlock()

	if raise {
		d.irq.Raise(rv.E1000IRQ)
	}

	return true
}

// Sent returns the frames the model has transmitted so far, in order.
func (d *Device) Sent() [][]byte {
	d.lock.Lock()
	defer d.lock.Unlock()

	sent := make([][]byte, len(d.sent))
	copy(sent, d.sent)

	return sent
}

func (d *Device) ringAt(base uint32) *Ring {
	page := d.alloc.Lookup(uint64(base))
	if page == nil {
		log.Panicf("%s: ring base %#x points outside memory",
			d.Name(), base)
	}

	return NewRing(page)
}

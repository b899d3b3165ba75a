package e1000

import (
	"log"
	"sync"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/sim"
)

// A Network receives inbound frames from the driver. Rx takes ownership
// of the buffer. It runs outside the ring lock and may call back into
// the kernel, including Transmit.
type Network interface {
	Rx(buf *mem.Page, length int)
}

// Comp is the e1000 driver. One lock serializes all mutation of both
// rings and their head/tail registers.
type Comp struct {
	*sim.ComponentBase

	Log *log.Logger

	regs  RegisterWindow
	alloc mem.Allocator
	net   Network

	lock sync.Mutex
	tx   *Ring
	rx   *Ring
}

// Init resets the device and programs it following the 82540 manual's
// 14.4 and 14.5 init sequences. It must run before the first transmit
// and before the device interrupt is enabled in the interrupt
// controller.
func (c *Comp) Init() {
	c.regs.Write(RegIMS, 0) // disable interrupts
	c.regs.Write(RegCTL, c.regs.Read(RegCTL)|CtlRST)
	c.regs.Write(RegIMS, 0) // redisable interrupts
	c.regs.Barrier()

	c.initTx()
	c.initRx()

	// filter on the fixed MAC address, multicast off
	c.regs.Write(RegRA, MacRALow)
	c.regs.Write(RegRA+1, MacRAHigh)
	for i := 0; i < 128; i++ {
		c.regs.Write(RegMTA+i, 0)
	}

	c.regs.Write(RegTCTL, TctlEN|
		TctlPSP|
		0x10<<TctlCTShift|
		0x40<<TctlCOLDShift)
	c.regs.Write(RegTIPG, 10|8<<10|6<<20)

	c.regs.Write(RegRCTL, RctlEN|
		RctlBAM|
		RctlSZ2048|
		RctlSECRC)

	// interrupt on every received packet, no coalescing
	c.regs.Write(RegRDTR, 0)
	c.regs.Write(RegRADV, 0)
	c.regs.Write(RegIMS, IntRXDW)
}

func (c *Comp) initTx() {
	c.tx.Reset()

	// every slot starts out reusable
	for i := 0; i < RingCap; i++ {
		c.tx.SetDesc(i, Descriptor{Status: StatDD})
		c.tx.SetBuf(i, nil)
	}

	c.regs.Write(RegTDBAL, uint32(c.tx.Base()))
	c.regs.Write(RegTDLEN, uint32(c.tx.Bytes()))
	c.regs.Write(RegTDH, 0)
	c.regs.Write(RegTDT, 0)
}

func (c *Comp) initRx() {
	c.rx.Reset()

	for i := 0; i < RingCap; i++ {
		page, err := c.alloc.AllocPage()
		if err != nil {
			log.Panicf("%s: rx buffer allocation failed: %s",
				c.Name(), err)
		}

		c.rx.SetBuf(i, page)
		c.rx.SetDesc(i, Descriptor{Addr: page.Addr})
	}

	c.regs.Write(RegRDBAL, uint32(c.rx.Base()))
	c.regs.Write(RegRDH, 0)
	c.regs.Write(RegRDT, RingCap-1)
	c.regs.Write(RegRDLEN, uint32(c.rx.Bytes()))
}

// Transmit enqueues one outbound frame. On success the driver takes
// ownership of the buffer and frees it once the device reports the send
// complete. On failure, the ring is full and the caller keeps the
// buffer; the driver never blocks or queues beyond the hardware ring.
func (c *Comp) Transmit(buf *mem.Page, length int) bool {
	c.lock.Lock()

	tail := int(c.regs.Read(RegTDT)) % RingCap
	if tail < 0 || tail >= RingCap {
		log.Panicf("%s: transmit tail %d out of range",
			c.Name(), tail)
	}

	if c.tx.Desc(tail).Status&StatDD == 0 {
		c.lock.Unlock()
		return false
	}

	// the previous send through this slot is complete
	if old := c.tx.Buf(tail); old != nil {
		c.alloc.FreePage(old)
	}

	c.tx.SetBuf(tail, buf)
	c.tx.SetDesc(tail, Descriptor{
		Addr:   buf.Addr,
		Length: uint16(length),
		Cmd:    TxdCmdEOP | TxdCmdRS,
	})

	c.regs.Write(RegTDT, uint32((tail+1)%RingCap))

	c.lock.Unlock()

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosTx,
			Item: PacketRecord{
				Direction: "tx",
				Slot:      tail,
				Length:    length,
			},
		})
	}

	return true
}

// Intr is the interrupt entry point. It acknowledges every pending cause
// first, so a packet arriving during handling re-raises instead of being
// lost, then drains the receive ring.
func (c *Comp) Intr() {
	c.regs.Write(RegICR, 0xffffffff)

	c.recv()
}

func (c *Comp) recv() {
	c.lock.Lock()

	slot := (int(c.regs.Read(RegRDT)) + 1) % RingCap
	for c.rx.Desc(slot).Status&StatDD != 0 {
		buf := c.rx.Buf(slot)
		length := int(c.rx.Desc(slot).Length)

		// the upcall may sleep or transmit, so it must not run
		// under the ring lock
		c.lock.Unlock()
		c.net.Rx(buf, length)
		c.lock.Lock()

		// a receive slot must never sit empty
		page, err := c.alloc.AllocPage()
		if err != nil {
			log.Panicf("%s: rx replenish failed: %s",
				c.Name(), err)
		}
		c.rx.SetBuf(slot, page)
		c.rx.SetDesc(slot, Descriptor{Addr: page.Addr})

		// give the slot back to the device
		c.regs.Write(RegRDT, uint32(slot))

		if c.NumHooks() > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosRx,
				Item: PacketRecord{
					Direction: "rx",
					Slot:      slot,
					Length:    length,
				},
			})
		}

		slot = (slot + 1) % RingCap
	}

	c.lock.Unlock()
}

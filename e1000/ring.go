package e1000

import (
	"encoding/binary"
	"log"

	"github.com/sarchlab/rvkernel/mem"
)

// RingCap is the number of descriptors in each ring.
const RingCap = 16

const (
	descBytes = 16
	ringBytes = RingCap * descBytes
	descAlign = 128
)

// A Descriptor is the hardware-visible record the device and the driver
// exchange through a ring. The status carries StatDD when the device is
// done with the slot.
type Descriptor struct {
	Addr   uint64
	Length uint16
	Cmd    uint8
	Status uint8
}

// A Ring is a view over a descriptor array that lives in one physical
// page, so the device can reach it by DMA through the ring base register.
// The owned-buffer table is driver-side bookkeeping that the device never
// sees.
type Ring struct {
	page *mem.Page
	bufs [RingCap]*mem.Page
}

// NewRing creates a ring view over the given page. The ring byte size
// must be a multiple of the descriptor alignment the device requires.
func NewRing(page *mem.Page) *Ring {
	if ringBytes%descAlign != 0 {
		log.Panicf("ring size %d is not a multiple of %d",
			ringBytes, descAlign)
	}

	return &Ring{page: page}
}

// Base returns the physical address the ring base register is programmed
// with.
func (r *Ring) Base() uint64 {
	return r.page.Addr
}

// Bytes returns the hardware footprint of the descriptor array.
func (r *Ring) Bytes() int {
	return ringBytes
}

// Desc decodes the descriptor at the given slot.
func (r *Ring) Desc(i int) Descriptor {
	b := r.page.Data[i*descBytes : (i+1)*descBytes]

	return Descriptor{
		Addr:   binary.LittleEndian.Uint64(b),
		Length: binary.LittleEndian.Uint16(b[8:]),
		Cmd:    b[10],
		Status: b[11],
	}
}

// SetDesc encodes the descriptor into the given slot.
func (r *Ring) SetDesc(i int, d Descriptor) {
	b := r.page.Data[i*descBytes : (i+1)*descBytes]

	binary.LittleEndian.PutUint64(b, d.Addr)
	binary.LittleEndian.PutUint16(b[8:], d.Length)
	b[10] = d.Cmd
	b[11] = d.Status
}

// Buf returns the buffer the slot owns, or nil.
func (r *Ring) Buf(i int) *mem.Page {
	return r.bufs[i]
}

// SetBuf records the buffer the slot owns.
func (r *Ring) SetBuf(i int, p *mem.Page) {
	r.bufs[i] = p
}

// Reset zeroes every descriptor and forgets all owned buffers.
func (r *Ring) Reset() {
	for i := 0; i < ringBytes; i++ {
		r.page.Data[i] = 0
	}

	r.bufs = [RingCap]*mem.Page{}
}

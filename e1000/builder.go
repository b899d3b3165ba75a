package e1000

import (
	"log"
	"os"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/sim"
)

// A Builder can build e1000 drivers.
type Builder struct {
	logger *log.Logger
	regs   RegisterWindow
	alloc  mem.Allocator
	net    Network
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		logger: log.New(os.Stderr, "", 0),
	}
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithRegisterWindow sets the device register window.
func (b Builder) WithRegisterWindow(w RegisterWindow) Builder {
	b.regs = w
	return b
}

// WithAllocator sets the physical page allocator.
func (b Builder) WithAllocator(a mem.Allocator) Builder {
	b.alloc = a
	return b
}

// WithNetwork sets the network stack that receives inbound frames.
func (b Builder) WithNetwork(n Network) Builder {
	b.net = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.regs == nil {
		panic("e1000 driver requires a register window")
	}
	if b.alloc == nil {
		panic("e1000 driver requires an allocator")
	}
	if b.net == nil {
		panic("e1000 driver requires a network stack")
	}
}

// Build returns a newly created driver. The descriptor rings live in
// pages taken from the allocator, so the device can reach them by DMA.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		Log:           b.logger,
		regs:          b.regs,
		alloc:         b.alloc,
		net:           b.net,
	}

	c.tx = NewRing(b.mustAllocPage(name))
	c.rx = NewRing(b.mustAllocPage(name))

	return c
}

func (b Builder) mustAllocPage(name string) *mem.Page {
	page, err := b.alloc.AllocPage()
	if err != nil {
		log.Panicf("%s: ring allocation failed: %s", name, err)
	}

	return page
}

package e1000

import (
	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/sim"
)

// A DeviceBuilder can build e1000 device models.
type DeviceBuilder struct {
	engine sim.Engine
	freq   sim.Freq
	alloc  mem.Allocator
	irq    IrqLine
}

// MakeDeviceBuilder creates a DeviceBuilder with default parameters.
func MakeDeviceBuilder() DeviceBuilder {
	return DeviceBuilder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the event engine the device runs on.
func (b DeviceBuilder) WithEngine(e sim.Engine) DeviceBuilder {
	b.engine = e
	return b
}

// WithFreq sets the frequency the device processes descriptors at.
func (b DeviceBuilder) WithFreq(f sim.Freq) DeviceBuilder {
	b.freq = f
	return b
}

// WithAllocator sets the allocator DMA addresses resolve through.
func (b DeviceBuilder) WithAllocator(a mem.Allocator) DeviceBuilder {
	b.alloc = a
	return b
}

// WithIrqLine sets the interrupt line toward the interrupt controller.
// Without one the device never raises interrupts.
func (b DeviceBuilder) WithIrqLine(l IrqLine) DeviceBuilder {
	b.irq = l
	return b
}

func (b DeviceBuilder) parametersMustBeValid() {
	if b.engine == nil {
		panic("e1000 device requires an engine")
	}
	if b.alloc == nil {
		panic("e1000 device requires an allocator")
	}
}

// Build returns a newly created device model.
func (b DeviceBuilder) Build(name string) *Device {
	b.parametersMustBeValid()

	d := &Device{
		alloc: b.alloc,
		irq:   b.irq,
	}
	d.TickingComponent = sim.NewTickingComponent(
		name, b.engine, b.freq, d)

	return d
}

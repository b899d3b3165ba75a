// Package e1000 implements the driver for the Intel 82540 ethernet
// controller together with a behavioral model of the device, connected
// through a memory-mapped register window and DMA descriptor rings.
package e1000

// Register offsets, as indexes into the 32-bit register file.
const (
	RegCTL   = 0x00000 / 4 // device control
	RegICR   = 0x000C0 / 4 // interrupt cause read
	RegIMS   = 0x000D0 / 4 // interrupt mask set/read
	RegRCTL  = 0x00100 / 4 // rx control
	RegTCTL  = 0x00400 / 4 // tx control
	RegTIPG  = 0x00410 / 4 // tx inter-packet gap
	RegRDBAL = 0x02800 / 4 // rx descriptor base address (low)
	RegRDLEN = 0x02808 / 4 // rx descriptor length
	RegRDH   = 0x02810 / 4 // rx descriptor head
	RegRDT   = 0x02818 / 4 // rx descriptor tail
	RegRDTR  = 0x02820 / 4 // rx delay timer
	RegRADV  = 0x0282C / 4 // rx absolute interrupt delay timer
	RegTDBAL = 0x03800 / 4 // tx descriptor base address (low)
	RegTDLEN = 0x03808 / 4 // tx descriptor length
	RegTDH   = 0x03810 / 4 // tx descriptor head
	RegTDT   = 0x03818 / 4 // tx descriptor tail
	RegMTA   = 0x05200 / 4 // multicast table array, 128 words
	RegRA    = 0x05400 / 4 // receive address filter
)

// NumRegs is the size of the register file, in 32-bit words.
const NumRegs = RegRA + 2

// Device control register bits.
const (
	CtlRST = 0x00400000 // device reset
)

// Interrupt bits, shared by ICR and IMS.
const (
	IntRXDW = 1 << 7 // rx descriptor written back
)

// Receive control register bits.
const (
	RctlEN     = 1 << 1     // receiver enable
	RctlBAM    = 1 << 15    // accept broadcast
	RctlSZ2048 = 0          // rx buffer size 2048
	RctlSECRC  = 0x04000000 // strip ethernet CRC
)

// Transmit control register bits.
const (
	TctlEN        = 1 << 1 // transmitter enable
	TctlPSP       = 1 << 3 // pad short packets
	TctlCTShift   = 4      // collision threshold
	TctlCOLDShift = 12     // collision distance
)

// Transmit descriptor command bits.
const (
	TxdCmdEOP = 0x01 // end of packet
	TxdCmdRS  = 0x08 // report status
)

// StatDD marks a descriptor as done, for both directions.
const StatDD = 0x01

// The fixed MAC address the receive filter is programmed with,
// 52:54:00:12:34:56, split over the two receive-address words. The top
// bit of the high word marks the filter entry valid.
const (
	MacRALow  = 0x12005452
	MacRAHigh = 0x5634 | 1<<31
)

// A RegisterWindow is the memory-mapped register file of the device,
// addressed by 32-bit word index. Barrier orders a write against all
// later accesses.
type RegisterWindow interface {
	Read(reg int) uint32
	Write(reg int, v uint32)
	Barrier()
}

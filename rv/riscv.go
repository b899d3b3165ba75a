// Package rv models the RISC-V supervisor-mode state that the kernel core
// reads and writes: one register file per hart, plus the architectural
// constants for traps and page tables.
package rv

// PageSize is the size of one page, in bytes.
const PageSize = 4096

// MaxVA is one beyond the highest usable Sv39 virtual address.
const MaxVA = uint64(1) << 38

// Trampoline is the virtual address of the trampoline page, mapped at the
// top of every address space.
const Trampoline = MaxVA - PageSize

// Page table entry permission bits.
const (
	PTEValid = 1 << 0
	PTERead  = 1 << 1
	PTEWrite = 1 << 2
	PTEExec  = 1 << 3
	PTEUser  = 1 << 4
)

// sstatus register bits.
const (
	SstatusSPP  = uint64(1) << 8 // previous privilege: 1=supervisor, 0=user
	SstatusSPIE = uint64(1) << 5 // supervisor previous interrupt enable
	SstatusSIE  = uint64(1) << 1 // supervisor interrupt enable
)

// sip register bits.
const (
	SipSSIP = uint64(1) << 1 // software interrupt pending
	SipSTIP = uint64(1) << 5 // timer interrupt pending
	SipSEIP = uint64(1) << 9 // external interrupt pending
)

// scause values for the traps the kernel core classifies.
const (
	ScauseEcallFromUser  = uint64(8)
	ScauseInstrPageFault = uint64(0xc)
	ScauseLoadPageFault  = uint64(0xd)
	ScauseStorePageFault = uint64(0xf)

	ScauseSupervisorTimer    = uint64(0x8000000000000005)
	ScauseSupervisorExternal = uint64(0x8000000000000009)
)

// Interrupt request numbers on the simulated platform, matching qemu's
// virt machine layout.
const (
	VirtioIRQ = 1
	UartIRQ   = 10
	E1000IRQ  = 33
)

// SatpSv39 is the mode field for an Sv39 satp value.
const SatpSv39 = uint64(8) << 60

// MakeSatp builds a satp value from a page table root address.
func MakeSatp(root uint64) uint64 {
	return SatpSv39 | (root >> 12)
}

// PageRoundDown rounds an address down to a page boundary.
func PageRoundDown(a uint64) uint64 {
	return a &^ uint64(PageSize-1)
}

// PageRoundUp rounds an address up to a page boundary.
func PageRoundUp(a uint64) uint64 {
	return (a + PageSize - 1) &^ uint64(PageSize-1)
}

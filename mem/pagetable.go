package mem

import (
	"errors"
	"sync"

	"github.com/sarchlab/rvkernel/rv"
)

// Page-table mapping errors.
var (
	ErrVAOutOfRange = errors.New("virtual address out of range")
	ErrRemap        = errors.New("virtual address already mapped")
)

// An Entry records how one virtual page translates to a physical page.
type Entry struct {
	VAddr uint64
	PAddr uint64
	Flags int
}

// A PageTable maps virtual pages to physical pages for one process.
type PageTable interface {
	// Map installs a translation for the page-aligned virtual address
	// with the given permission flags.
	Map(va, pa uint64, flags int) error

	// Translate returns the entry that covers the virtual address. The
	// bool return indicates whether a mapping exists.
	Translate(va uint64) (Entry, bool)

	// Unmap removes the translation for the page-aligned virtual
	// address.
	Unmap(va uint64)

	// Root returns the physical address of the page table root, the
	// token that goes into satp.
	Root() uint64
}

// NewPageTable creates a new page table with the given root address.
func NewPageTable(root uint64) PageTable {
	return &pageTableImpl{
		root:    root,
		entries: make(map[uint64]Entry),
	}
}

type pageTableImpl struct {
	sync.Mutex

	root    uint64
	entries map[uint64]Entry
}

func (pt *pageTableImpl) Map(va, pa uint64, flags int) error {
	pt.Lock()
	defer pt.Unlock()

	if va >= rv.MaxVA {
		return ErrVAOutOfRange
	}

	va = rv.PageRoundDown(va)
	if _, mapped := pt.entries[va]; mapped {
		return ErrRemap
	}

	pt.entries[va] = Entry{
		VAddr: va,
		PAddr: pa,
		Flags: flags | rv.PTEValid,
	}

	return nil
}

func (pt *pageTableImpl) Translate(va uint64) (Entry, bool) {
	pt.Lock()
	defer pt.Unlock()

	entry, found := pt.entries[rv.PageRoundDown(va)]
	return entry, found
}

func (pt *pageTableImpl) Unmap(va uint64) {
	pt.Lock()
	defer pt.Unlock()

	delete(pt.entries, rv.PageRoundDown(va))
}

func (pt *pageTableImpl) Root() uint64 {
	return pt.root
}

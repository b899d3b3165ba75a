package mem

import (
	"errors"
	"sync"

	"github.com/sarchlab/rvkernel/rv"
)

// ErrOutOfMemory is returned when the allocator has no free pages left.
var ErrOutOfMemory = errors.New("out of physical pages")

// An Allocator hands out physical pages of the simulated memory.
type Allocator interface {
	// AllocPage returns one zero-filled page, or ErrOutOfMemory.
	AllocPage() (*Page, error)

	// FreePage returns a page to the free list.
	FreePage(p *Page)

	// Lookup resolves a physical address to the page that contains it.
	// It returns nil if the address does not belong to any allocated
	// page.
	Lookup(addr uint64) *Page

	// NumFree returns the number of free pages.
	NumFree() int
}

// NewAllocator creates an allocator managing numPages pages starting at
// the given base physical address.
func NewAllocator(base uint64, numPages int) Allocator {
	a := &allocatorImpl{
		base:     base,
		numPages: numPages,
		pages:    make(map[uint64]*Page),
	}

	for i := numPages - 1; i >= 0; i-- {
		p := &Page{
			Addr: base + uint64(i)*rv.PageSize,
			Data: make([]byte, rv.PageSize),
		}
		a.freeList = append(a.freeList, p)
	}

	return a
}

type allocatorImpl struct {
	lock sync.Mutex

	base     uint64
	numPages int
	freeList []*Page
	pages    map[uint64]*Page
}

func (a *allocatorImpl) AllocPage() (*Page, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if len(a.freeList) == 0 {
		return nil, ErrOutOfMemory
	}

	p := a.freeList[len(a.freeList)-1]
	a.freeList = a.freeList[:len(a.freeList)-1]
	a.pages[p.Addr] = p

	p.Zero()

	return p, nil
}

func (a *allocatorImpl) FreePage(p *Page) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, allocated := a.pages[p.Addr]; !allocated {
		panic("freeing a page that is not allocated")
	}

	delete(a.pages, p.Addr)
	a.freeList = append(a.freeList, p)
}

func (a *allocatorImpl) Lookup(addr uint64) *Page {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.pages[rv.PageRoundDown(addr)]
}

func (a *allocatorImpl) NumFree() int {
	a.lock.Lock()
	defer a.lock.Unlock()

	return len(a.freeList)
}

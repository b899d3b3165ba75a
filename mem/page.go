// Package mem provides the simulated physical memory: pages, a free-list
// page allocator, and per-process page tables.
package mem

import "github.com/sarchlab/rvkernel/rv"

// A Page is one physical page of the simulated memory. Addr is the
// physical address the hardware (and the descriptor rings) see; Data is
// the page content.
type Page struct {
	Addr uint64
	Data []byte
}

// Zero clears the content of the page.
func (p *Page) Zero() {
	for i := range p.Data {
		p.Data[i] = 0
	}
}

// Size returns the page size in bytes.
func (p *Page) Size() int {
	return rv.PageSize
}

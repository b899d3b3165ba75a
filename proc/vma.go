package proc

// MaxVMA is the number of memory-mapped region slots each process owns.
const MaxVMA = 16

// Protection bits of a mapped region.
const (
	ProtRead  = 1 << 0
	ProtWrite = 1 << 1
	ProtExec  = 1 << 2
)

// An Inode is the slice of the filesystem the demand-paging path needs:
// lock the inode, read file content at an offset, unlock. A short read
// near the end of the file is not an error; ReadAt reports how many bytes
// it filled.
type Inode interface {
	Lock()
	Unlock()
	ReadAt(p []byte, off int64) (int, error)
}

// A File is an open file handle that can back a mapped region.
type File struct {
	Inode Inode
}

// A VMA describes one memory-mapped region of a process's address space.
// Invalid slots are free. VMAs are created and destroyed by the mmap and
// munmap paths outside this module; the trap core only consults them.
type VMA struct {
	Addr   uint64
	Len    uint64
	Prot   int
	File   *File  // nil for anonymous mappings
	Offset uint64 // offset into the backing file
	Valid  bool
}

// Contains reports whether the region covers the given virtual address.
func (v *VMA) Contains(va uint64) bool {
	return va >= v.Addr && va < v.Addr+v.Len
}

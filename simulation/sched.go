package simulation

import (
	"sync"

	"github.com/sarchlab/rvkernel/mem"
	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
)

// An ExitRecord is one terminated process.
type ExitRecord struct {
	Pid    int
	Status int
}

// Scheduler is the demo process-control layer behind the trap core. It
// keeps one current process per hart and implements sleep/wakeup on
// arbitrary keys.
type Scheduler struct {
	lock sync.Mutex
	cond *sync.Cond

	allocator mem.Allocator

	nextPid int
	current map[int]*proc.Proc
	yields  map[int]int
	exits   []ExitRecord
	wakeGen map[any]uint64
}

// NewScheduler creates a scheduler that carves kernel stacks and page
// tables out of the given allocator.
func NewScheduler(allocator mem.Allocator) *Scheduler {
	s := &Scheduler{
		allocator: allocator,
		nextPid:   1,
		current:   make(map[int]*proc.Proc),
		yields:    make(map[int]int),
		wakeGen:   make(map[any]uint64),
	}
	s.cond = sync.NewCond(&s.lock)

	return s
}

// NewProc creates a runnable process with a fresh kernel stack and page
// table.
func (s *Scheduler) NewProc(name string) (*proc.Proc, error) {
	kstack, err := s.allocator.AllocPage()
	if err != nil {
		return nil, err
	}

	ptRoot, err := s.allocator.AllocPage()
	if err != nil {
		s.allocator.FreePage(kstack)
		return nil, err
	}

	s.lock.Lock()
	pid := s.nextPid
	s.nextPid++
	s.lock.Unlock()

	p := &proc.Proc{
		Pid:       pid,
		Name:      name,
		Kstack:    kstack.Addr,
		TrapFrame: &proc.TrapFrame{},
		PageTable: mem.NewPageTable(ptRoot.Addr),
	}
	p.SetState(proc.Runnable)

	return p, nil
}

// Run makes the process current on the hart.
func (s *Scheduler) Run(hartID int, p *proc.Proc) {
	s.lock.Lock()
	defer s.lock.Unlock()

	p.SetState(proc.Running)
	s.current[hartID] = p
}

// CurrentProc returns the process running on the hart, or nil.
func (s *Scheduler) CurrentProc(hartID int) *proc.Proc {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.current[hartID]
}

// Yield gives up the hart. The demo scheduler has nothing else to run,
// so it only counts the preemption.
func (s *Scheduler) Yield(hartID int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.yields[hartID]++
}

// Yields returns how many times the hart has been preempted.
func (s *Scheduler) Yields(hartID int) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.yields[hartID]
}

// Exit terminates the process.
func (s *Scheduler) Exit(p *proc.Proc, status int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	p.SetState(proc.Zombie)
	s.exits = append(s.exits, ExitRecord{Pid: p.Pid, Status: status})

	for hartID, cur := range s.current {
		if cur == p {
			delete(s.current, hartID)
		}
	}
}

// Exits returns the processes terminated so far, in order.
func (s *Scheduler) Exits() []ExitRecord {
	s.lock.Lock()
	defer s.lock.Unlock()

	exits := make([]ExitRecord, len(s.exits))
	copy(exits, s.exits)

	return exits
}

// Sleep blocks the calling context until the key is woken. The caller's
// lock, if any, is released while waiting and reacquired before return,
// so checking a condition and going to sleep is atomic with respect to
// Wakeup.
func (s *Scheduler) Sleep(key any, lk *sync.Mutex) {
	s.lock.Lock()
	if lk != nil {
		lk.Unlock()
	}

	gen := s.wakeGen[key]
	for s.wakeGen[key] == gen {
		s.cond.Wait()
	}
	s.lock.Unlock()

	if lk != nil {
		lk.Lock()
	}
}

// Wakeup wakes all contexts sleeping on the key.
func (s *Scheduler) Wakeup(key any) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.wakeGen[key]++
	s.cond.Broadcast()
}

// MapFile installs a file-backed region into the first free region slot
// of the process.
func (s *Scheduler) MapFile(
	p *proc.Proc,
	addr, length uint64,
	prot int,
	ip proc.Inode,
	offset uint64,
) bool {
	for i := 0; i < proc.MaxVMA; i++ {
		if p.VMAs[i].Valid {
			continue
		}

		p.VMAs[i] = proc.VMA{
			Addr:   rv.PageRoundDown(addr),
			Len:    length,
			Prot:   prot,
			File:   &proc.File{Inode: ip},
			Offset: offset,
			Valid:  true,
		}

		return true
	}

	return false
}

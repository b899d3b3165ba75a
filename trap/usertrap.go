package trap

import (
	"log"

	"github.com/sarchlab/rvkernel/proc"
	"github.com/sarchlab/rvkernel/rv"
	"github.com/sarchlab/rvkernel/sim"
)

// UserTrap handles an interrupt, exception, or system call taken from
// user mode. It is entered with interrupts disabled by the hardware.
func (c *Comp) UserTrap(h *rv.Hart) {
	whichDev := NotRecognized

	if h.InSupervisor() {
		log.Panic("usertrap: not from user mode")
	}

	// future traps land in the kernel trap handler, since we are in
	// the kernel now
	h.Stvec = KernelVecToken

	p := c.sched.CurrentProc(h.ID)

	// save user program counter
	p.TrapFrame.Epc = h.Sepc

	outcome := "unexpected"

	if h.Scause == rv.ScauseEcallFromUser {
		// system call

		if p.Killed() {
			c.sched.Exit(p, -1)
			return
		}

		// sepc points to the ecall instruction; return to the next
		// instruction instead
		p.TrapFrame.Epc += 4

		// an interrupt would change sepc, scause, and sstatus, so
		// enable only now that we are done with those registers
		h.IntrOn()

		c.sys.Syscall(p)
		outcome = "syscall"
	} else if whichDev = c.DevIntr(h); whichDev != NotRecognized {
		outcome = "device"
		if whichDev == TimerIntr {
			outcome = "timer"
		}
	} else if h.Scause == rv.ScauseLoadPageFault ||
		h.Scause == rv.ScauseStorePageFault ||
		h.Scause == rv.ScauseInstrPageFault {
		outcome = c.pageFault(p, h)
	} else {
		c.Log.Printf("usertrap(): unexpected scause %#x pid=%d\n",
			h.Scause, p.Pid)
		c.Log.Printf("            sepc=%#x stval=%#x\n",
			h.Sepc, h.Stval)
		p.SetKilled()
	}

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosUserTrap,
			Item: Record{
				HartID:  h.ID,
				Pid:     p.Pid,
				Scause:  h.Scause,
				Epc:     p.TrapFrame.Epc,
				Stval:   h.Stval,
				Outcome: outcome,
			},
		})
	}

	if p.Killed() {
		c.sched.Exit(p, -1)
		return
	}

	// give up the hart if this was a timer interrupt
	if whichDev == TimerIntr {
		c.sched.Yield(h.ID)
	}

	c.UserTrapRet(h)
}

// pageFault runs the demand-paging path for a load, store, or
// instruction-fetch fault. It returns the outcome label for tracing.
func (c *Comp) pageFault(p *proc.Proc, h *rv.Hart) string {
	va := h.Stval

	for i := 0; i < proc.MaxVMA; i++ {
		vma := &p.VMAs[i]
		if !vma.Valid || !vma.Contains(va) {
			continue
		}

		// first match wins
		if (h.Scause == rv.ScauseLoadPageFault && vma.Prot&proc.ProtRead == 0) ||
			(h.Scause == rv.ScauseStorePageFault && vma.Prot&proc.ProtWrite == 0) ||
			(h.Scause == rv.ScauseInstrPageFault && vma.Prot&proc.ProtExec == 0) {
			c.logBadFault(p, h)
			p.SetKilled()
			return "prot"
		}

		page, err := c.alloc.AllocPage()
		if err != nil {
			c.Log.Printf("usertrap(): page allocation failed pid=%d\n",
				p.Pid)
			p.SetKilled()
			return "nomem"
		}

		flags := rv.PTEUser
		if vma.Prot&proc.ProtRead != 0 {
			flags |= rv.PTERead
		}
		if vma.Prot&proc.ProtWrite != 0 {
			flags |= rv.PTEWrite
		}
		if vma.Prot&proc.ProtExec != 0 {
			flags |= rv.PTEExec
		}

		if vma.File != nil {
			ip := vma.File.Inode
			off := int64(rv.PageRoundDown(va) - vma.Addr + vma.Offset)

			c.fs.BeginOp()
			ip.Lock()
			_, err := ip.ReadAt(page.Data, off)
			ip.Unlock()
			c.fs.EndOp()

			if err != nil {
				c.alloc.FreePage(page)
				c.Log.Printf("usertrap(): file read failed pid=%d\n",
					p.Pid)
				p.SetKilled()
				return "readfail"
			}
		}

		err = p.PageTable.Map(rv.PageRoundDown(va), page.Addr, flags)
		if err != nil {
			c.alloc.FreePage(page)
			c.Log.Printf("usertrap(): map failed pid=%d: %s\n",
				p.Pid, err)
			p.SetKilled()
			return "mapfail"
		}

		if c.NumHooks() > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosPageIn,
				Item: Record{
					HartID:  h.ID,
					Pid:     p.Pid,
					Scause:  h.Scause,
					Epc:     h.Sepc,
					Stval:   va,
					Outcome: "pagein",
				},
			})
		}

		return "pagein"
	}

	// the fault address is outside every mapped region
	c.logBadFault(p, h)
	p.SetKilled()
	return "unmapped"
}

func (c *Comp) logBadFault(p *proc.Proc, h *rv.Hart) {
	c.Log.Printf("usertrap(): unexpected scause %#x pid=%d\n",
		h.Scause, p.Pid)
	c.Log.Printf("            sepc=%#x stval=%#x\n", h.Sepc, h.Stval)
}

// UserTrapRet returns to user mode. It populates the trap frame fields
// the next trap entry needs, computes the user-mode status word, and
// hands control to the trampoline. It does not return.
func (c *Comp) UserTrapRet(h *rv.Hart) {
	p := c.sched.CurrentProc(h.ID)

	// traps are about to be redirected from the kernel vector to the
	// user vector, so interrupts stay off until we are back in user
	// space where the user vector is the correct destination
	h.IntrOff()

	h.Stvec = UserVecToken

	tf := p.TrapFrame
	tf.KernelSatp = h.Satp
	tf.KernelSP = p.Kstack + rv.PageSize
	tf.KernelTrap = TrapEntryToken
	tf.KernelHartID = uint64(h.ID)

	// previous privilege to user, interrupts enabled in user mode
	x := h.Sstatus
	x &^= rv.SstatusSPP
	x |= rv.SstatusSPIE
	h.Sstatus = x

	h.Sepc = tf.Epc

	satp := rv.MakeSatp(p.PageTable.Root())

	c.tramp.UserRet(h, satp)
}

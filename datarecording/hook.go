package datarecording

import "github.com/sarchlab/rvkernel/sim"

type recordingHook struct {
	pos      *sim.HookPos
	recorder DataRecorder
	table    string
}

// NewHook returns a hook that inserts every item invoked at the given
// position into a table. The table is created from the sample entry, so
// the items invoked at the position must share the sample's type.
func NewHook(
	pos *sim.HookPos,
	recorder DataRecorder,
	table string,
	sampleEntry any,
) sim.Hook {
	recorder.CreateTable(table, sampleEntry)

	return &recordingHook{
		pos:      pos,
		recorder: recorder,
		table:    table,
	}
}

// Func records the hook item.
func (h *recordingHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != h.pos {
		return
	}

	h.recorder.InsertData(h.table, ctx.Item)
}

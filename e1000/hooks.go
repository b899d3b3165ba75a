package e1000

import "github.com/sarchlab/rvkernel/sim"

// Hook positions on the driver.
var (
	// HookPosTx triggers after a frame is accepted into the tx ring.
	HookPosTx = &sim.HookPos{Name: "NicTx"}

	// HookPosRx triggers after a received frame is delivered and its
	// slot replenished.
	HookPosRx = &sim.HookPos{Name: "NicRx"}
)

// A PacketRecord is the hook item for HookPosTx and HookPosRx.
type PacketRecord struct {
	Direction string
	Slot      int
	Length    int
}

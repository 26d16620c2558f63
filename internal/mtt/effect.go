package mtt

import "github.com/corepoker/holdem/internal/bridge"

// EffectSink is every capability the host exposes to the tournament
// controller. Like the table engine, the controller never touches a
// clock or I/O directly.
type EffectSink interface {
	Info(msg string)
	Warn(msg string)
	Timestamp() int64

	LaunchSubGame(bundle string, maxPlayers int, initState bridge.MttTableState) TableID
	BridgeEvent(destTable TableID, payload bridge.Event)
	Settle(playerID PlayerID, amount uint64, isPending bool)
	SetEntryLock(lock EntryLock)
	Checkpoint()
}

package testharness

import (
	"github.com/corepoker/holdem/internal/bridge"
	"github.com/corepoker/holdem/internal/mtt"
)

// ControllerSink is a fake mtt.EffectSink. It allocates sequential table
// ids starting at 1 and records every directive the controller issues.
type ControllerSink struct {
	Now int64

	Infos []string
	Warns []string

	nextTableID mtt.TableID
	Launched    []struct {
		Bundle     string
		MaxPlayers int
		InitState  bridge.MttTableState
		TableID    mtt.TableID
	}
	BridgeEvents []struct {
		DestTable mtt.TableID
		Payload   bridge.Event
	}
	Settlements []struct {
		PlayerID  mtt.PlayerID
		Amount    uint64
		IsPending bool
	}
	EntryLocks  []mtt.EntryLock
	Checkpoints int
}

func NewControllerSink() *ControllerSink { return &ControllerSink{} }

func (s *ControllerSink) Info(msg string) { s.Infos = append(s.Infos, msg) }
func (s *ControllerSink) Warn(msg string) { s.Warns = append(s.Warns, msg) }
func (s *ControllerSink) Timestamp() int64 { return s.Now }

func (s *ControllerSink) LaunchSubGame(bundle string, maxPlayers int, initState bridge.MttTableState) mtt.TableID {
	s.nextTableID++
	id := s.nextTableID
	s.Launched = append(s.Launched, struct {
		Bundle     string
		MaxPlayers int
		InitState  bridge.MttTableState
		TableID    mtt.TableID
	}{bundle, maxPlayers, initState, id})
	return id
}

func (s *ControllerSink) BridgeEvent(destTable mtt.TableID, payload bridge.Event) {
	s.BridgeEvents = append(s.BridgeEvents, struct {
		DestTable mtt.TableID
		Payload   bridge.Event
	}{destTable, payload})
}

func (s *ControllerSink) Settle(playerID mtt.PlayerID, amount uint64, isPending bool) {
	s.Settlements = append(s.Settlements, struct {
		PlayerID  mtt.PlayerID
		Amount    uint64
		IsPending bool
	}{playerID, amount, isPending})
}

func (s *ControllerSink) SetEntryLock(lock mtt.EntryLock) { s.EntryLocks = append(s.EntryLocks, lock) }
func (s *ControllerSink) Checkpoint()                     { s.Checkpoints++ }

var _ mtt.EffectSink = (*ControllerSink)(nil)

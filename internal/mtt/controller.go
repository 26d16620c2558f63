package mtt

import (
	"fmt"
	"sort"

	"github.com/corepoker/holdem/internal/bridge"
)

// Join implements spec.md §4.5.1: registration is allowed while Init, or
// while Playing before entry_close_time and before the final table forms.
func (s *State) Join(id PlayerID, position int) error {
	if s.Stage == StageInit || (s.Stage == StagePlaying && s.Timestamp <= s.EntryCloseTime && !s.IsFinalTable) {
		s.Ranks = append(s.Ranks, Rank{PlayerID: id, Chips: 0, Status: StatusOut, Position: position})
		return nil
	}
	return fmt.Errorf("mtt: registration closed for player %d", id)
}

// Deposit credits a registered player's starting stack once, the first
// time they deposit while still eligible to register.
func (s *State) Deposit(id PlayerID, amount, earlyBird uint64) error {
	rank, _ := s.findRank(id)
	if rank == nil {
		return fmt.Errorf("mtt: deposit from unregistered player %d", id)
	}
	eligible := s.Stage == StageInit || (s.Stage == StagePlaying && s.Timestamp <= s.EntryCloseTime && !s.IsFinalTable)
	if !eligible {
		return fmt.Errorf("mtt: deposit rejected, entry closed")
	}
	if rank.Chips > 0 {
		return fmt.Errorf("mtt: player %d already deposited", id)
	}
	rank.Chips = s.StartChips + earlyBird
	rank.Status = StatusAlive
	s.TotalPrize += amount
	return nil
}

// Leave unregisters a player. It is rejected once the tournament is
// Playing — a seated player must not simply vanish mid-event-stream; the
// host is expected to route a seated leave through the table instead.
func (s *State) Leave(id PlayerID) error {
	if s.Stage != StageInit {
		return newErr(LeaveNotAllowed, "leave rejected once tournament is playing")
	}
	_, idx := s.findRank(id)
	if idx < 0 {
		return fmt.Errorf("mtt: player %d not registered", id)
	}
	s.Ranks = append(s.Ranks[:idx], s.Ranks[idx+1:]...)
	return nil
}

// GameStart implements spec.md §4.5.2.
func (s *State) GameStart(sink EffectSink) error {
	if s.Stage != StageInit {
		return nil
	}
	if len(s.Ranks) == 0 {
		s.Stage = StageCompleted
		return nil
	}
	if len(s.Ranks) == 1 {
		sink.Settle(s.Ranks[0].PlayerID, s.TotalPrize, false)
		s.Stage = StageCompleted
		return nil
	}

	s.Stage = StagePlaying
	n := len(s.Ranks)
	numTables := (n + s.TableSize - 1) / s.TableSize
	perTable := make([][]Rank, numTables)
	for j, r := range s.Ranks {
		tid := j % numTables
		perTable[tid] = append(perTable[tid], r)
	}

	sb, bb := s.BlindInfo.BlindAt(0)
	for i := 0; i < numTables; i++ {
		players := perTable[i]

		snapshotPlayers := make([]TablePlayerSnapshot, len(players))
		for pos, r := range players {
			snapshotPlayers[pos] = TablePlayerSnapshot{PlayerID: r.PlayerID, Chips: r.Chips, TablePosition: pos}
		}

		initState := bridge.MttTableState{
			BTN:     0,
			SB:      sb,
			BB:      bb,
			Players: toBridgePlayers(snapshotPlayers),
		}
		tableID := sink.LaunchSubGame(s.SubgameBundle, s.TableSize, initState)
		for _, p := range snapshotPlayers {
			s.TableAssigns[p.PlayerID] = tableID
		}
		s.Tables[tableID] = TableSnapshot{TableID: uint64(tableID), SB: sb, BB: bb, Players: snapshotPlayers}
	}

	if numTables == 1 {
		s.IsFinalTable = true
	}
	return nil
}

// HandleGameResult implements spec.md §4.5.3.
func (s *State) HandleGameResult(payload bridge.GameResultPayload, sink EffectSink) error {
	tid := TableID(payload.TableID)

	snapshot := TableSnapshot{
		TableID: payload.Table.TableID,
		HandID:  payload.Table.HandID,
		BTN:     payload.Table.BTN,
		SB:      payload.Table.SB,
		BB:      payload.Table.BB,
		Ante:    payload.Table.Ante,
	}
	for _, p := range payload.Table.Players {
		snapshot.Players = append(snapshot.Players, TablePlayerSnapshot{
			PlayerID: PlayerID(p.ID), Chips: p.Chips, TablePosition: p.TablePosition, TimeCards: p.TimeCards,
		})
	}
	s.Tables[tid] = snapshot

	for _, pr := range payload.PlayerResults {
		rank, _ := s.findRank(PlayerID(pr.ID))
		if rank == nil {
			continue
		}
		switch pr.ChangeKind {
		case bridge.ChipsChangeAdd:
			rank.Chips += pr.ChangeAmount
		case bridge.ChipsChangeSub:
			if pr.ChangeAmount > rank.Chips {
				rank.Chips = 0
			} else {
				rank.Chips -= pr.ChangeAmount
			}
		}
		if rank.Chips == 0 {
			rank.Status = StatusOut
			delete(s.TableAssigns, rank.PlayerID)
		}
	}
	s.sortRanks()

	if err := s.rebalance(tid, sink); err != nil {
		return err
	}

	if aliveCount(s.Ranks) == 1 {
		s.applyPrizes(sink)
		s.Stage = StageCompleted
	}

	if s.Stage == StagePlaying && s.EntryLock == EntryOpen && s.Timestamp >= s.EntryCloseTime {
		s.EntryLock = EntryClosed
		sink.SetEntryLock(EntryClosed)
	}

	sink.Checkpoint()
	return nil
}

// rebalance implements spec.md §4.5.4.
func (s *State) rebalance(c TableID, sink EffectSink) error {
	if len(s.Tables) == 1 {
		snap := s.Tables[c]
		if len(snap.Players) > 1 {
			s.startGame(c, nil, sink)
		}
		return nil
	}

	cur := len(s.Tables[c].Players)

	emptyElsewhere := 0
	var leastID, mostID TableID
	leastCount, mostCount := -1, -1
	for tid, snap := range s.Tables {
		if tid != c {
			emptyElsewhere += s.TableSize - len(snap.Players)
		}
		cnt := len(snap.Players)
		if leastCount == -1 || cnt < leastCount || (cnt == leastCount && tid < leastID) {
			leastCount, leastID = cnt, tid
		}
		if mostCount == -1 || cnt > mostCount || (cnt == mostCount && tid < mostID) {
			mostCount, mostID = cnt, tid
		}
	}

	if cur <= emptyElsewhere {
		return s.closeAndRedistribute(c, sink)
	}

	if c == mostID && mostCount > leastCount+1 {
		return s.balanceTables(mostID, leastID, sink)
	}

	if cur == 1 {
		return nil
	}

	s.startGame(c, nil, sink)
	return nil
}

func (s *State) startGame(tid TableID, sitout []PlayerID, sink EffectSink) {
	sb, bb := s.BlindInfo.BlindAt(s.TimeElapsed)
	ids := make([]bridge.PlayerID, len(sitout))
	for i, id := range sitout {
		ids[i] = bridge.PlayerID(id)
	}
	sink.BridgeEvent(tid, bridge.Event{
		Kind: bridge.EventStartGame,
		StartGame: &bridge.StartGamePayload{
			SB: sb, BB: bb, SitoutPlayers: ids,
		},
	})
}

func (s *State) closeAndRedistribute(c TableID, sink EffectSink) error {
	closing, ok := s.Tables[c]
	if !ok {
		return newErr(TableNotFound, "table %d not found", c)
	}
	delete(s.Tables, c)

	remaining := sortedTableIDs(s.Tables)
	if len(remaining) == 0 {
		return newErr(TableIsEmpty, "no remaining tables to redistribute to")
	}

	sink.BridgeEvent(c, bridge.Event{Kind: bridge.EventCloseTable})

	counts := make(map[TableID]int, len(remaining))
	for _, tid := range remaining {
		counts[tid] = len(s.Tables[tid].Players)
	}

	assignments := make(map[TableID][]TablePlayerSnapshot)
	seen := make(map[PlayerID]bool, len(closing.Players))
	for _, p := range closing.Players {
		if seen[p.PlayerID] {
			return newErr(DuplicatedPlayerInRelocate, "player %d already relocated", p.PlayerID)
		}
		seen[p.PlayerID] = true

		best := remaining[0]
		for _, tid := range remaining {
			if counts[tid] < counts[best] {
				best = tid
			}
		}
		assignments[best] = append(assignments[best], p)
		counts[best]++
		s.TableAssigns[p.PlayerID] = best
	}

	for _, tid := range remaining {
		entries := assignments[tid]
		if len(entries) == 0 {
			continue
		}
		sitins := make([]bridge.SitinEntry, len(entries))
		for i, p := range entries {
			sitins[i] = bridge.SitinEntry{PlayerID: bridge.PlayerID(p.PlayerID), Chips: p.Chips, TimeCards: p.TimeCards}
		}
		sink.BridgeEvent(tid, bridge.Event{Kind: bridge.EventSitinPlayers, SitinPlayers: &bridge.SitinPlayersPayload{Sitins: sitins}})

		snap := s.Tables[tid]
		snap.Players = append(snap.Players, entries...)
		s.Tables[tid] = snap
	}

	if len(s.Tables) == 1 {
		s.IsFinalTable = true
	}
	return nil
}

func (s *State) balanceTables(most, least TableID, sink EffectSink) error {
	mostSnap := s.Tables[most]
	leastSnap := s.Tables[least]
	moveCount := (len(mostSnap.Players) - len(leastSnap.Players)) / 2
	if moveCount <= 0 {
		return nil
	}

	split := len(mostSnap.Players) - moveCount
	moved := append([]TablePlayerSnapshot{}, mostSnap.Players[split:]...)
	mostSnap.Players = append([]TablePlayerSnapshot{}, mostSnap.Players[:split]...)
	s.Tables[most] = mostSnap

	movedIDs := make([]PlayerID, len(moved))
	sitins := make([]bridge.SitinEntry, len(moved))
	for i, p := range moved {
		s.TableAssignsPending[p.PlayerID] = least
		movedIDs[i] = p.PlayerID
		sitins[i] = bridge.SitinEntry{PlayerID: bridge.PlayerID(p.PlayerID), Chips: p.Chips, TimeCards: p.TimeCards}
	}

	s.startGame(most, movedIDs, sink)
	sink.BridgeEvent(least, bridge.Event{Kind: bridge.EventSitinPlayers, SitinPlayers: &bridge.SitinPlayersPayload{Sitins: sitins}})
	return nil
}

// applyPrizes pays rank-ordered per-mil shares of the total prize pool.
func (s *State) applyPrizes(sink EffectSink) {
	s.sortRanks()
	for i, share := range s.PrizeRules {
		if i >= len(s.Ranks) {
			break
		}
		amount := s.TotalPrize * uint64(share) / 1000
		sink.Settle(s.Ranks[i].PlayerID, amount, false)
	}
}

// SitPlayers implements late sit-in (spec.md §4.5.6): prefer existing
// tables with free seats (smallest first), then create new tables for
// any remainder.
func (s *State) SitPlayers(ids []PlayerID, sink EffectSink) error {
	type avail struct {
		id   TableID
		free int
	}
	var avails []avail
	for tid, snap := range s.Tables {
		if free := s.TableSize - len(snap.Players); free > 0 {
			avails = append(avails, avail{tid, free})
		}
	}
	sort.Slice(avails, func(i, j int) bool {
		return len(s.Tables[avails[i].id].Players) < len(s.Tables[avails[j].id].Players)
	})

	remaining := ids
	for _, a := range avails {
		if len(remaining) == 0 {
			break
		}
		take := a.free
		if take > len(remaining) {
			take = len(remaining)
		}
		chosen := remaining[:take]
		remaining = remaining[take:]

		snap := s.Tables[a.id]
		sitins := make([]bridge.SitinEntry, len(chosen))
		for i, id := range chosen {
			chips := s.chipsFor(id)
			s.TableAssigns[id] = a.id
			sitins[i] = bridge.SitinEntry{PlayerID: bridge.PlayerID(id), Chips: chips, FirstTimeSit: true}
			snap.Players = append(snap.Players, TablePlayerSnapshot{PlayerID: id, Chips: chips, TablePosition: len(snap.Players)})
		}
		s.Tables[a.id] = snap
		sink.BridgeEvent(a.id, bridge.Event{Kind: bridge.EventSitinPlayers, SitinPlayers: &bridge.SitinPlayersPayload{Sitins: sitins}})
	}

	for len(remaining) > 0 {
		take := s.TableSize
		if take > len(remaining) {
			take = len(remaining)
		}
		chosen := remaining[:take]
		remaining = remaining[take:]

		snapshotPlayers := make([]TablePlayerSnapshot, len(chosen))
		for i, id := range chosen {
			snapshotPlayers[i] = TablePlayerSnapshot{PlayerID: id, Chips: s.chipsFor(id), TablePosition: i}
		}

		sb, bb := s.BlindInfo.BlindAt(s.TimeElapsed)
		initState := bridge.MttTableState{SB: sb, BB: bb, Players: toBridgePlayers(snapshotPlayers)}
		tid := sink.LaunchSubGame(s.SubgameBundle, s.TableSize, initState)
		for _, p := range snapshotPlayers {
			s.TableAssigns[p.PlayerID] = tid
		}
		s.Tables[tid] = TableSnapshot{TableID: uint64(tid), SB: sb, BB: bb, Players: snapshotPlayers}
	}
	return nil
}

func (s *State) chipsFor(id PlayerID) uint64 {
	if rank, _ := s.findRank(id); rank != nil {
		return rank.Chips
	}
	return s.StartChips
}

// AdvanceTime updates the clock driving the blind schedule (spec.md
// §4.5.5); time_elapsed is a pure function of what the host reports.
func (s *State) AdvanceTime(timeElapsed, timestamp int64) {
	s.TimeElapsed = timeElapsed
	s.Timestamp = timestamp
}

func toBridgePlayers(players []TablePlayerSnapshot) []bridge.MttTablePlayer {
	out := make([]bridge.MttTablePlayer, len(players))
	for i, p := range players {
		out[i] = bridge.MttTablePlayer{ID: bridge.PlayerID(p.PlayerID), Chips: p.Chips, TablePosition: p.TablePosition, TimeCards: p.TimeCards}
	}
	return out
}

func sortedTableIDs(tables map[TableID]TableSnapshot) []TableID {
	ids := make([]TableID, 0, len(tables))
	for id := range tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

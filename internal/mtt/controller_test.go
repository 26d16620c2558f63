package mtt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corepoker/holdem/internal/bridge"
	"github.com/corepoker/holdem/internal/testharness"
)

func newTestState(tableSize int) *State {
	return NewState(MttAccountData{
		EntryCloseTime: 1_000_000,
		TableSize:      tableSize,
		StartChips:     10_000,
		BlindInfo:      BlindInfo{BlindBase: 1, BlindInterval: 600_000, Rules: []BlindRuleItem{{SBMultiplier: 50, BBMultiplier: 100}}},
		PrizeRules:     []uint8{700, 300},
		SubgameBundle:  "holdem-mtt",
	})
}

func TestGameStartSeatsAllPlayersAtOneTable(t *testing.T) {
	s := newTestState(6)
	for i := PlayerID(1); i <= 4; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}

	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))

	require.Equal(t, StagePlaying, s.Stage)
	require.True(t, s.IsFinalTable)
	require.Len(t, sink.Launched, 1)
	require.Len(t, sink.Launched[0].InitState.Players, 4)
}

func TestGameStartSplitsAcrossTwoTables(t *testing.T) {
	s := newTestState(2)
	for i := PlayerID(1); i <= 4; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}

	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))

	require.False(t, s.IsFinalTable)
	require.Len(t, sink.Launched, 2)
	require.Len(t, s.Tables, 2)
	for _, l := range sink.Launched {
		require.Len(t, l.InitState.Players, 2)
	}
}

func TestGameStartSinglePlayerSettlesImmediately(t *testing.T) {
	s := newTestState(6)
	require.NoError(t, s.Join(1, 0))
	require.NoError(t, s.Deposit(1, 100, 0))

	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))

	require.Equal(t, StageCompleted, s.Stage)
	require.Len(t, sink.Settlements, 1)
	require.Equal(t, PlayerID(1), sink.Settlements[0].PlayerID)
	require.Equal(t, uint64(100), sink.Settlements[0].Amount)
}

func TestJoinRejectedAfterFinalTableForms(t *testing.T) {
	s := newTestState(6)
	for i := PlayerID(1); i <= 3; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}
	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))
	require.True(t, s.IsFinalTable)

	require.Error(t, s.Join(99, 99))
}

func TestHandleGameResultEliminatesZeroChipPlayer(t *testing.T) {
	s := newTestState(6)
	for i := PlayerID(1); i <= 3; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}
	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))
	tableID := sink.Launched[0].TableID

	payload := bridge.GameResultPayload{
		TableID: uint64(tableID),
		PlayerResults: []bridge.PlayerResult{
			{ID: 1, Chips: 20_000, ChangeKind: bridge.ChipsChangeAdd, ChangeAmount: 10_000},
			{ID: 2, Chips: 0, ChangeKind: bridge.ChipsChangeSub, ChangeAmount: 10_000},
		},
		Table: bridge.MttTableState{
			TableID: uint64(tableID),
			Players: []bridge.MttTablePlayer{
				{ID: 1, Chips: 20_000}, {ID: 2, Chips: 0}, {ID: 3, Chips: 10_000},
			},
		},
	}
	require.NoError(t, s.HandleGameResult(payload, sink))

	rank, _ := s.findRank(2)
	require.Equal(t, StatusOut, rank.Status)
	_, assigned := s.TableAssigns[2]
	require.False(t, assigned)
	require.Equal(t, 1, sink.Checkpoints)
}

func TestHandleGameResultSettlesWhenOnePlayerRemains(t *testing.T) {
	s := newTestState(6)
	require.NoError(t, s.Join(1, 0))
	require.NoError(t, s.Join(2, 1))
	require.NoError(t, s.Deposit(1, 50, 0))
	require.NoError(t, s.Deposit(2, 50, 0))
	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))
	tableID := sink.Launched[0].TableID

	payload := bridge.GameResultPayload{
		TableID: uint64(tableID),
		PlayerResults: []bridge.PlayerResult{
			{ID: 1, Chips: 20_000, ChangeKind: bridge.ChipsChangeAdd, ChangeAmount: 10_000},
			{ID: 2, Chips: 0, ChangeKind: bridge.ChipsChangeSub, ChangeAmount: 10_000},
		},
		Table: bridge.MttTableState{TableID: uint64(tableID)},
	}
	require.NoError(t, s.HandleGameResult(payload, sink))

	require.Equal(t, StageCompleted, s.Stage)
	require.Len(t, sink.Settlements, 2)
}

func TestRebalanceClosesUndersizedTable(t *testing.T) {
	s := newTestState(4)
	for i := PlayerID(1); i <= 7; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}
	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))
	require.Len(t, s.Tables, 2)

	// Table A has 4 players, table B has 3 (one free seat) — enough room
	// for table A's lone survivor once the others are eliminated.
	tableA := sink.Launched[0].TableID
	require.Len(t, s.Tables[tableA].Players, 4)
	tableAPlayers := s.Tables[tableA].Players

	// Eliminate all but one player at table A; the survivor's table
	// should close and redistribute into the remaining table.
	var results []bridge.PlayerResult
	var snapshotPlayers []bridge.MttTablePlayer
	for i, p := range tableAPlayers {
		if i == 0 {
			results = append(results, bridge.PlayerResult{ID: bridge.PlayerID(p.PlayerID), Chips: p.Chips * 4, ChangeKind: bridge.ChipsChangeAdd, ChangeAmount: p.Chips * 3})
			snapshotPlayers = append(snapshotPlayers, bridge.MttTablePlayer{ID: bridge.PlayerID(p.PlayerID), Chips: p.Chips * 4})
			continue
		}
		results = append(results, bridge.PlayerResult{ID: bridge.PlayerID(p.PlayerID), Chips: 0, ChangeKind: bridge.ChipsChangeSub, ChangeAmount: p.Chips})
	}

	payload := bridge.GameResultPayload{
		TableID:       uint64(tableA),
		PlayerResults: results,
		Table:         bridge.MttTableState{TableID: uint64(tableA), Players: snapshotPlayers},
	}
	require.NoError(t, s.HandleGameResult(payload, sink))

	_, stillOpen := s.Tables[tableA]
	require.False(t, stillOpen)
	require.Len(t, s.Tables, 1)
	require.True(t, s.IsFinalTable)

	var sawClose bool
	for _, be := range sink.BridgeEvents {
		if be.DestTable == tableA && be.Payload.Kind == bridge.EventCloseTable {
			sawClose = true
		}
	}
	require.True(t, sawClose)
}

func TestSitPlayersFillsExistingTableBeforeCreatingNew(t *testing.T) {
	s := newTestState(4)
	for i := PlayerID(1); i <= 3; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}
	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))
	require.Len(t, s.Tables, 1)

	var onlyTable TableID
	for id := range s.Tables {
		onlyTable = id
	}

	// Player 9 registered before the final table formed and is being
	// reseated late — already a Rank, not a fresh Join.
	s.Ranks = append(s.Ranks, Rank{PlayerID: 9, Chips: 10_000, Status: StatusAlive, Position: 9})
	require.NoError(t, s.SitPlayers([]PlayerID{9}, sink))

	require.Len(t, sink.Launched, 1)
	require.Len(t, s.Tables[onlyTable].Players, 4)
}

func TestDepositRejectsSecondDeposit(t *testing.T) {
	s := newTestState(6)
	require.NoError(t, s.Join(1, 0))
	require.NoError(t, s.Deposit(1, 100, 0))
	require.Error(t, s.Deposit(1, 100, 0))
}

// TestAdvanceTimeMovesBlindLevel confirms AdvanceTime's elapsed-time clock
// feeds BlindInfo.BlindAt, moving the effective blind level forward as
// time passes and pinning to the final rule once the schedule runs out.
func TestAdvanceTimeMovesBlindLevel(t *testing.T) {
	s := newTestState(6)
	s.BlindInfo = BlindInfo{
		BlindBase:     1,
		BlindInterval: 600_000,
		Rules: []BlindRuleItem{
			{SBMultiplier: 50, BBMultiplier: 100},
			{SBMultiplier: 100, BBMultiplier: 200},
			{SBMultiplier: 200, BBMultiplier: 400},
		},
	}

	sb, bb := s.BlindInfo.BlindAt(0)
	require.Equal(t, uint64(50), sb)
	require.Equal(t, uint64(100), bb)

	s.AdvanceTime(600_000, 1_000)
	sb, bb = s.BlindInfo.BlindAt(s.TimeElapsed)
	require.Equal(t, uint64(100), sb)
	require.Equal(t, uint64(200), bb)
	require.Equal(t, int64(1_000), s.Timestamp)

	// Past the last scheduled level, BlindAt pins to the final rule.
	s.AdvanceTime(10_000_000, 2_000)
	sb, bb = s.BlindInfo.BlindAt(s.TimeElapsed)
	require.Equal(t, uint64(200), sb)
	require.Equal(t, uint64(400), bb)
}

// TestGameStartUsesBlindLevelAtStart confirms GameStart seats the first
// tables at blind level zero of the schedule (sb = 50 * BlindBase).
func TestGameStartUsesBlindLevelAtStart(t *testing.T) {
	s := newTestState(6)
	s.BlindInfo = BlindInfo{
		BlindBase:     1,
		BlindInterval: 600_000,
		Rules: []BlindRuleItem{
			{SBMultiplier: 50, BBMultiplier: 100},
			{SBMultiplier: 100, BBMultiplier: 200},
		},
	}
	for i := PlayerID(1); i <= 2; i++ {
		require.NoError(t, s.Join(i, int(i)))
		require.NoError(t, s.Deposit(i, 1, 0))
	}

	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))

	require.Len(t, sink.Launched, 1)
	require.Equal(t, uint64(50), sink.Launched[0].InitState.SB, "GameStart always seats the first tables at level zero")
}

func TestLeaveRejectedOncePlaying(t *testing.T) {
	s := newTestState(6)
	require.NoError(t, s.Join(1, 0))
	require.NoError(t, s.Join(2, 1))
	require.NoError(t, s.Deposit(1, 1, 0))
	require.NoError(t, s.Deposit(2, 1, 0))
	sink := testharness.NewControllerSink()
	require.NoError(t, s.GameStart(sink))

	err := s.Leave(1)
	require.Error(t, err)
	mttErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, LeaveNotAllowed, mttErr.Kind)
}

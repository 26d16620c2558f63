package holdem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corepoker/holdem/internal/testharness"
)

func newHeadsUpEngine(t *testing.T) (*Engine, *testharness.TableSink) {
	t.Helper()
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 100_000}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)
	sink := testharness.NewTableSink(7)

	require.NoError(t, engine.onJoin(1, 0, sink))
	require.NoError(t, engine.onJoin(2, 1, sink))
	require.NoError(t, engine.onDeposit(1, 10_000, sink))
	require.NoError(t, engine.onDeposit(2, 10_000, sink))

	return engine, sink
}

// TestHeadsUpFoldAwardsPotToOpponent exercises a minimal heads-up hand:
// blinds post, BTN/SB folds preflop, BB takes the pot uncontested.
func TestHeadsUpFoldAwardsPotToOpponent(t *testing.T) {
	engine, sink := newHeadsUpEngine(t)

	require.NoError(t, engine.HandleEvent(Event{Kind: EventGameStart}, sink))
	require.Equal(t, StageShareKey, engine.State.Stage)
	require.Equal(t, uint64(1), engine.State.HandID)

	require.NoError(t, engine.HandleEvent(Event{Kind: EventRandomnessReady}, sink))
	require.Equal(t, StreetPreflop, engine.State.Street)
	require.NotNil(t, engine.State.Acting)

	btnID := engine.State.Acting.ID
	var bbID PlayerID
	for _, id := range []PlayerID{1, 2} {
		if id != btnID {
			bbID = id
		}
	}

	// Heads-up: BTN posted SB and acts first preflop.
	require.Equal(t, uint64(50), engine.State.BetMap[btnID])
	require.Equal(t, uint64(100), engine.State.BetMap[bbID])

	require.NoError(t, engine.HandleCustomAction(btnID, CustomAction{Kind: ActionFold}, sink))

	require.Equal(t, StageSettle, engine.State.Stage)
	require.Equal(t, StatusFold, engine.State.PlayerMap[btnID].Status)
	require.Equal(t, uint64(9950), engine.State.PlayerMap[btnID].Chips)
	require.Equal(t, uint64(10050), engine.State.PlayerMap[bbID].Chips)
	require.Equal(t, sink.Checkpoints, 0)
}

// TestSecondHandRotatesButton confirms the BTN rotates to the other seat
// once a second hand starts, rather than repeating the same player.
func TestSecondHandRotatesButton(t *testing.T) {
	engine, sink := newHeadsUpEngine(t)

	require.NoError(t, engine.HandleEvent(Event{Kind: EventGameStart}, sink))
	require.NoError(t, engine.HandleEvent(Event{Kind: EventRandomnessReady}, sink))
	firstBTN := engine.State.BTN

	btnID := engine.State.Acting.ID
	require.NoError(t, engine.HandleCustomAction(btnID, CustomAction{Kind: ActionFold}, sink))

	require.NoError(t, engine.HandleEvent(Event{Kind: EventWaitingTimeout}, sink))
	require.Equal(t, StageShareKey, engine.State.Stage)
	require.NotEqual(t, firstBTN, engine.State.BTN)
}

// TestDepositAboveMaxIsCapped exercises onDeposit's max_deposit clamp.
func TestDepositAboveMaxIsCapped(t *testing.T) {
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 500}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)
	sink := testharness.NewTableSink(1)

	require.NoError(t, engine.onJoin(1, 0, sink))
	require.NoError(t, engine.onDeposit(1, 1_000, sink))
	require.Equal(t, uint64(500), engine.State.PlayerMap[1].Deposit)
}

package holdem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corepoker/holdem/internal/testharness"
)

func totalChips(t *TableState) uint64 {
	var total uint64
	for _, p := range t.PlayerMap {
		total += p.Chips
	}
	return total
}

// TestAllInRunnerConservesChips drives two equal-stacked heads-up players
// all-in preflop and confirms the runner path (no further action possible
// on flop/turn/river) still collects the closing street's bets into a pot
// and conserves every chip across the table.
func TestAllInRunnerConservesChips(t *testing.T) {
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 100_000}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)
	sink := testharness.NewTableSink(11)

	require.NoError(t, engine.onJoin(1, 0, sink))
	require.NoError(t, engine.onJoin(2, 1, sink))
	require.NoError(t, engine.onDeposit(1, 1_000, sink))
	require.NoError(t, engine.onDeposit(2, 1_000, sink))

	require.NoError(t, engine.HandleEvent(Event{Kind: EventGameStart}, sink))
	require.NoError(t, engine.HandleEvent(Event{Kind: EventRandomnessReady}, sink))

	before := totalChips(engine.State)
	require.Equal(t, uint64(2_000), before)

	btnID := engine.State.Acting.ID
	var bbID PlayerID
	for _, id := range []PlayerID{1, 2} {
		if id != btnID {
			bbID = id
		}
	}

	// BTN shoves its entire remaining stack (950 after SB).
	require.NoError(t, engine.HandleCustomAction(btnID, CustomAction{Kind: ActionRaise, Amount: 950}, sink))
	// BB calls off its remaining stack (900 after BB) to match.
	require.NoError(t, engine.HandleCustomAction(bbID, CustomAction{Kind: ActionCall}, sink))

	require.Equal(t, StageSettle, engine.State.Stage)
	require.Len(t, engine.State.Board, 5)

	var potTotal uint64
	for _, pot := range engine.State.Pots {
		potTotal += pot.Amount
		require.NotEmpty(t, pot.Winners)
		for _, w := range pot.Winners {
			require.True(t, pot.HasOwner(w), "winner %d must own a share of the pot it won", w)
		}
	}
	require.Equal(t, uint64(2_000), potTotal, "the closing street's bets must reach a pot before showdown")
	require.Equal(t, before, totalChips(engine.State), "no chips may appear or vanish across a hand")
}

// TestThreeWaySidePotsAwardWinnersFromOwnerSet seats three players with
// staggered stacks so the shortest stack's all-in creates a side pot the
// short stack cannot win, then checks every pot's winners are a subset of
// its owners and the table's total chips are conserved.
func TestThreeWaySidePotsAwardWinnersFromOwnerSet(t *testing.T) {
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 100_000}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)
	sink := testharness.NewTableSink(23)

	require.NoError(t, engine.onJoin(1, 0, sink)) // BTN, short stack
	require.NoError(t, engine.onJoin(2, 1, sink)) // SB
	require.NoError(t, engine.onJoin(3, 2, sink)) // BB, deep stack
	require.NoError(t, engine.onDeposit(1, 300, sink))
	require.NoError(t, engine.onDeposit(2, 700, sink))
	require.NoError(t, engine.onDeposit(3, 1_500, sink))

	require.NoError(t, engine.HandleEvent(Event{Kind: EventGameStart}, sink))
	require.NoError(t, engine.HandleEvent(Event{Kind: EventRandomnessReady}, sink))

	before := totalChips(engine.State)
	require.Equal(t, uint64(2_500), before)

	require.Equal(t, PlayerID(1), engine.State.Acting.ID, "BTN acts first preflop in a 3-handed hand")

	// Player 1 shoves its whole remaining stack (300).
	require.NoError(t, engine.HandleCustomAction(1, CustomAction{Kind: ActionRaise, Amount: 300}, sink))
	// Player 2 (SB, 700 total) reraises all-in to 700.
	require.NoError(t, engine.HandleCustomAction(2, CustomAction{Kind: ActionRaise, Amount: 650}, sink))
	// Player 3 (BB, 1500 total) calls the 700, leaving chips behind.
	require.NoError(t, engine.HandleCustomAction(3, CustomAction{Kind: ActionCall}, sink))

	require.Equal(t, StageSettle, engine.State.Stage)
	require.Len(t, engine.State.Pots, 2, "the short stack's shove must split off a side pot")

	main := engine.State.Pots[0]
	require.Len(t, main.Owners, 3)
	require.Equal(t, uint64(900), main.Amount)

	side := engine.State.Pots[1]
	require.Len(t, side.Owners, 2)
	require.False(t, side.HasOwner(1), "the short stack cannot own a share of the side pot built above its shove")
	require.Equal(t, uint64(800), side.Amount)

	for _, pot := range engine.State.Pots {
		for _, w := range pot.Winners {
			require.True(t, pot.HasOwner(w))
		}
	}
	require.Equal(t, before, totalChips(engine.State))
}

// TestWaitBBPromotionAtHandStart exercises the late-joiner rule: a player
// who joins and deposits mid-session starts the table's next hand as
// WaitBB or Wait depending on whether their seat falls between the
// incoming BTN and the incoming BB.
func TestWaitBBPromotionAtHandStart(t *testing.T) {
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 100_000}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)
	sink := testharness.NewTableSink(5)

	require.NoError(t, engine.onJoin(1, 0, sink))
	require.NoError(t, engine.onJoin(2, 1, sink))
	require.NoError(t, engine.onJoin(3, 2, sink))
	require.NoError(t, engine.onDeposit(1, 10_000, sink))
	require.NoError(t, engine.onDeposit(2, 10_000, sink))
	require.NoError(t, engine.onDeposit(3, 10_000, sink))

	require.NoError(t, engine.HandleEvent(Event{Kind: EventGameStart}, sink))
	require.NoError(t, engine.HandleEvent(Event{Kind: EventRandomnessReady}, sink))

	// A fourth player joins and funds mid-hand, seated between BTN and the
	// table's wraparound point.
	require.NoError(t, engine.onJoin(4, 3, sink))
	require.NoError(t, engine.onDeposit(4, 10_000, sink))
	require.Equal(t, StatusInit, engine.State.PlayerMap[4].Status)

	// Fold players down to a single survivor so the hand reaches Settle.
	for i := 0; i < 10 && engine.State.Stage != StageSettle; i++ {
		require.NotNil(t, engine.State.Acting)
		require.NoError(t, engine.HandleCustomAction(engine.State.Acting.ID, CustomAction{Kind: ActionFold}, sink))
	}
	require.Equal(t, StageSettle, engine.State.Stage)
	require.NoError(t, engine.HandleEvent(Event{Kind: EventWaitingTimeout}, sink))

	require.NotEqual(t, StatusInit, engine.State.PlayerMap[4].Status, "arrangePlayers must resolve every Init player by the next hand")
	require.Contains(t, []PlayerStatus{StatusWait, StatusWaitBB}, engine.State.PlayerMap[4].Status)
}

// TestWaitbbPromotionPicksNearestCandidateToComingSB reproduces spec.md's
// S6 scenario: a 6-max table with Waitbb candidates at seats 1 and 3 either
// side of the coming SB/BB and BTN=6. Only seat 3 — the candidate nearest
// the coming SB — may be promoted to Wait and seated as BB; seat 1 must
// stay Waitbb, and player_order must read [2, 3, 5, 6].
func TestWaitbbPromotionPicksNearestCandidateToComingSB(t *testing.T) {
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 100_000}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)

	state.PlayerMap = map[PlayerID]*Player{
		1: {ID: 1, Position: 1, Status: StatusWaitBB, Chips: 10_000},
		2: {ID: 2, Position: 2, Status: StatusWait, Chips: 10_000},
		3: {ID: 3, Position: 3, Status: StatusWaitBB, Chips: 10_000},
		5: {ID: 5, Position: 5, Status: StatusWait, Chips: 10_000},
		6: {ID: 6, Position: 6, Status: StatusWait, Chips: 10_000},
	}
	state.BTN = 6

	engine.arrangePlayers()

	require.Equal(t, StatusWaitBB, state.PlayerMap[1].Status, "seat 1 is farther from the coming SB and must stay Waitbb")
	require.Equal(t, StatusWait, state.PlayerMap[3].Status, "seat 3 is nearest the coming SB and must be promoted")
	require.Equal(t, []PlayerID{2, 3, 5, 6}, state.PlayerOrder)
}

// TestActionTimeoutFoldsAfterClockAdvances drives a mock clock past the
// acting player's preflop deadline and confirms a host-delivered
// EventActionTimeout at that point auto-folds them, the way a real host
// would dispatch the timeout only once its own clock reaches it.
func TestActionTimeoutFoldsAfterClockAdvances(t *testing.T) {
	account := HoldemAccount{SB: 50, BB: 100, MaxDeposit: 100_000}
	state := NewTableState(account, ModeCash, NLHoldem{})
	engine := NewEngine(state, nil)
	sink := testharness.NewTableSinkWithClock(t, 7)

	require.NoError(t, engine.onJoin(1, 0, sink))
	require.NoError(t, engine.onJoin(2, 1, sink))
	require.NoError(t, engine.onJoin(3, 2, sink))
	require.NoError(t, engine.onDeposit(1, 10_000, sink))
	require.NoError(t, engine.onDeposit(2, 10_000, sink))
	require.NoError(t, engine.onDeposit(3, 10_000, sink))

	require.NoError(t, engine.HandleEvent(Event{Kind: EventGameStart}, sink))
	require.NoError(t, engine.HandleEvent(Event{Kind: EventRandomnessReady}, sink))

	require.NotNil(t, engine.State.Acting)
	acting := engine.State.Acting.ID
	require.Len(t, sink.ActionTimeouts, 1, "askForAction must have scheduled exactly one deadline")
	deadlineMs := sink.ActionTimeouts[0].Ms

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sink.Clock.Advance(time.Duration(deadlineMs) * time.Millisecond).MustWait(ctx)

	require.NoError(t, engine.HandleEvent(Event{Kind: EventActionTimeout, PlayerID: acting}, sink))

	p := engine.State.PlayerMap[acting]
	require.True(t, p.IsAFK, "a real timeout (no time card available) must mark the player AFK")
	require.Equal(t, StatusFold, p.Status, "the acting player owed a bet and must be folded, not checked")
}

package holdem

import (
	"sort"

	"github.com/corepoker/holdem/poker/card"
)

func playersToStay(t *TableState) []PlayerID {
	var out []PlayerID
	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		p := t.PlayerMap[id]
		switch p.Status {
		case StatusActing, StatusWait, StatusActed, StatusAllin:
			out = append(out, id)
		}
	}
	return out
}

// playersToAct returns, in player_order, the players who still owe an
// action this street: Wait/Acted players whose current bet is below
// street_bet, or any Wait player (who has not acted at all yet).
func playersToAct(t *TableState) []PlayerID {
	var out []PlayerID
	for _, id := range t.PlayerOrder {
		p, ok := t.PlayerMap[id]
		if !ok {
			continue
		}
		if p.Status != StatusWait && p.Status != StatusActed {
			continue
		}
		if p.Status == StatusWait || t.BetMap[id] < t.StreetBet {
			out = append(out, id)
		}
	}
	return out
}

func nextStreet(s Street) Street {
	switch s {
	case StreetInit:
		return StreetPreflop
	case StreetPreflop:
		return StreetFlop
	case StreetFlop:
		return StreetTurn
	case StreetTurn:
		return StreetRiver
	case StreetRiver:
		return StreetShowdown
	default:
		return StreetShowdown
	}
}

// nextState is the decision tree invoked after every action and at key
// transitions (spec.md §4.3.2).
func (e *Engine) nextState(sink EffectSink) error {
	t := e.State

	inGame := 0
	for _, p := range t.PlayerMap {
		if p.Status != StatusOut && p.Status != StatusEliminated {
			inGame++
		}
	}
	if inGame < 2 {
		return e.singlePlayerWin(sink, true)
	}

	stay := playersToStay(t)
	if len(stay) == 1 {
		return e.singlePlayerWin(sink, false)
	}

	if t.Street == StreetPreflop && len(t.BetMap) == 0 {
		if err := e.postPreflopBlinds(sink); err != nil {
			return err
		}
		return e.nextState(sink)
	}

	toAct := playersToAct(t)
	if len(toAct) > 0 {
		return e.askForAction(toAct[0], sink)
	}

	allinCount := 0
	for _, id := range stay {
		if t.PlayerMap[id].Status == StatusAllin {
			allinCount++
		}
	}
	if allinCount+1 >= len(stay) {
		return e.enterRunner(sink)
	}

	if nextStreet(t.Street) != StreetShowdown {
		return e.changeStreet(sink)
	}

	e.collectBets(sink)
	return e.enterShowdown(sink)
}

func (e *Engine) askForAction(id PlayerID, sink EffectSink) error {
	t := e.State
	p := t.PlayerMap[id]
	p.Status = StatusActing
	now := sink.Timestamp()
	ms := streetTimeoutMs(t.Street)
	if p.IsAFK {
		ms = TimeoutAFKMs
	}
	t.Acting = &ActingPlayer{
		ID:          id,
		Position:    p.Position,
		ActionStart: now,
		Clock:       now + ms,
	}
	sink.ActionTimeout(id, ms)
	return nil
}

// collectBets implements side-pot construction after the acting round
// closes (spec.md §4.3.4).
func (e *Engine) collectBets(sink EffectSink) {
	t := e.State

	folded := make(map[PlayerID]bool)
	for id, p := range t.PlayerMap {
		if p.Status == StatusFold {
			folded[id] = true
		}
	}
	for i := range t.Pots {
		owners := t.Pots[i].Owners[:0:0]
		for _, o := range t.Pots[i].Owners {
			if !folded[o] {
				owners = append(owners, o)
			}
		}
		t.Pots[i].Owners = owners
	}

	oldPots := append([]Pot{}, t.Pots...)
	betMapSnapshot := make(map[PlayerID]uint64, len(t.BetMap))
	for k, v := range t.BetMap {
		betMapSnapshot[k] = v
	}

	levels := make([]uint64, 0, len(t.BetMap))
	seen := make(map[uint64]bool)
	for _, amt := range t.BetMap {
		if amt > 0 && !seen[amt] {
			seen[amt] = true
			levels = append(levels, amt)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	var prev uint64
	var newPots []Pot
	for _, level := range levels {
		delta := level - prev
		contributors := 0
		var owners []PlayerID
		for _, id := range orderedPlayerIDs(t.PlayerMap) {
			if amt, ok := t.BetMap[id]; ok && amt >= level {
				contributors++
				if !folded[id] {
					owners = append(owners, id)
				}
			}
		}
		if contributors == 1 && len(owners) == 1 {
			t.PlayerMap[owners[0]].Chips += delta
		} else if len(owners) > 0 {
			amount := delta * uint64(contributors)
			amount -= e.takeRake(amount)
			newPots = append(newPots, Pot{Owners: owners, Amount: amount})
		}
		prev = level
	}

	t.Pots = mergePots(t.Pots, newPots)

	t.History.SetPot(toHistoryStreet(t.Street), potsTotal(t.Pots))
	t.pushDisplay(Display{Kind: DisplayCollectBets, OldPots: oldPots, BetMap: betMapSnapshot})
	t.BetMap = make(map[PlayerID]uint64)
}

// takeRake subtracts and accumulates rake from a newly formed pot amount,
// only in Cash mode and only post-Preflop, capped at rake_cap*bb minus
// rake already collected this hand.
func (e *Engine) takeRake(potAmount uint64) uint64 {
	t := e.State
	if t.Mode != ModeCash || t.Street == StreetPreflop {
		return 0
	}
	if t.Rake == 0 {
		return 0
	}
	cap := uint64(t.RakeCap) * t.BB
	remaining := int64(cap) - int64(t.RakeCollected)
	if remaining <= 0 {
		return 0
	}
	byRate := potAmount * uint64(t.Rake) / 1000
	take := byRate
	if take > uint64(remaining) {
		take = uint64(remaining)
	}
	t.RakeCollected += take
	return take
}

// mergePots folds the first new pot into the last existing pot when both
// have exactly the same owner set; every other new pot is appended as a
// pot of its own.
func mergePots(existing, fresh []Pot) []Pot {
	if len(existing) == 0 {
		return fresh
	}
	if len(fresh) == 0 {
		return existing
	}
	last := &existing[len(existing)-1]
	if len(last.Owners) == len(fresh[0].Owners) && sameOwnerSet(last.Owners, fresh[0].Owners) {
		last.Amount += fresh[0].Amount
		return append(existing, fresh[1:]...)
	}
	return append(existing, fresh...)
}

func sameOwnerSet(a, b []PlayerID) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := sortedIDs(a), sortedIDs(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func (e *Engine) changeStreet(sink EffectSink) error {
	t := e.State
	e.collectBets(sink)

	for _, p := range t.PlayerMap {
		if p.Status == StatusActed {
			p.Status = StatusWait
		}
		p.UsedTimeCardThisStreet = false
	}
	t.StreetBet = 0
	t.MinRaise = t.BB

	t.Street = nextStreet(t.Street)
	e.dealBoard(sink, t.Street)

	return e.nextState(sink)
}

// dealBoard reveals the board cards belonging to the given street. Board
// indices in the shuffled deck start immediately after every dealt
// player's two hole-card indices.
func (e *Engine) dealBoard(sink EffectSink, street Street) {
	t := e.State
	base := 2 * len(t.HandIndexMap)

	var indices []int
	switch street {
	case StreetFlop:
		indices = []int{base, base + 1, base + 2}
	case StreetTurn:
		indices = []int{base + 3}
	case StreetRiver:
		indices = []int{base + 4}
	default:
		return
	}

	sink.Reveal(t.DeckRandomID, indices)
	revealed := sink.GetRevealed(t.DeckRandomID)
	for _, idx := range indices {
		t.Board = append(t.Board, revealed[idx])
	}
	t.pushDisplay(Display{Kind: DisplayDealBoard, Board: append([]card.Card{}, t.Board...)})
}

// enterRunner collects the bets that closed out this street into Pots
// (the all-in cutoff can fire on any street, not just after a normal
// changeStreet pass), reveals all remaining hole cards of Acted/Allin
// players and the rest of the board, then proceeds straight to Showdown.
func (e *Engine) enterRunner(sink EffectSink) error {
	t := e.State
	t.Stage = StageRunner
	e.collectBets(sink)

	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		p := t.PlayerMap[id]
		if p.Status != StatusActed && p.Status != StatusAllin {
			continue
		}
		idx, ok := t.HandIndexMap[id]
		if !ok {
			continue
		}
		sink.Reveal(t.DeckRandomID, []int{idx[0], idx[1]})
	}

	for t.Street != StreetRiver {
		next := nextStreet(t.Street)
		if next == StreetShowdown {
			break
		}
		t.Street = next
		e.dealBoard(sink, t.Street)
	}

	return e.enterShowdown(sink)
}

func (e *Engine) enterShowdown(sink EffectSink) error {
	t := e.State
	if t.Stage != StageRunner {
		t.Stage = StageShowdown
	}
	t.Street = StreetShowdown
	return e.settle(sink, nil)
}

// singlePlayerWin awards every live pot (plus any remaining bet_map, via
// a final collectBets pass) to the sole remaining player. tableEnd
// signals that the *table* itself has only one player left (spec.md
// §4.3.2 condition 1) rather than just this hand (condition 2) — both
// settle the same way at the hand level.
func (e *Engine) singlePlayerWin(sink EffectSink, tableEnd bool) error {
	t := e.State
	e.collectBets(sink)

	var winner PlayerID
	found := false
	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		p := t.PlayerMap[id]
		if tableEnd {
			if p.Status != StatusOut && p.Status != StatusEliminated {
				winner, found = id, true
				break
			}
			continue
		}
		if p.Status == StatusActing || p.Status == StatusWait || p.Status == StatusActed || p.Status == StatusAllin {
			winner, found = id, true
			break
		}
	}
	if !found {
		return newErr(SinglePlayerMissing, "no single player found to award pots to")
	}

	for i := range t.Pots {
		t.Pots[i].Winners = []PlayerID{winner}
	}
	t.Stage = StageShowdown
	return e.settle(sink, &winner)
}

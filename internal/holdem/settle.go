package holdem

import (
	"github.com/corepoker/holdem/internal/handhistory"
	"github.com/corepoker/holdem/poker/card"
)

// showdownContestants returns players whose hand must be evaluated:
// Acted or Allin, plus Wait players whose bet matches street_bet but who
// never got to act after the river closed out via an opponent's all-in.
func showdownContestants(t *TableState) []PlayerID {
	var out []PlayerID
	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		p := t.PlayerMap[id]
		switch p.Status {
		case StatusActed, StatusAllin:
			out = append(out, id)
		case StatusWait:
			if t.BetMap[id] == t.StreetBet {
				out = append(out, id)
			}
		}
	}
	return out
}

// settle evaluates hands (unless forcedWinner names a single remaining
// player, in which case every pot — even one paid out directly during
// collectBets and never materialized here — goes to them), assigns
// winners per pot, computes and applies prizes, marks eliminated
// players, and schedules the settle-stage wait_timeout.
func (e *Engine) settle(sink EffectSink, forcedWinner *PlayerID) error {
	t := e.State
	runner := t.Stage == StageRunner

	if forcedWinner != nil {
		for i := range t.Pots {
			t.Pots[i].Winners = []PlayerID{*forcedWinner}
		}
	} else {
		contestants := showdownContestants(t)
		if len(contestants) == 0 {
			return newErr(StrongestHandNotFound, "no contestants at showdown")
		}

		holeCards := make(map[PlayerID][]card.Card, len(contestants))
		for _, id := range contestants {
			idx, ok := t.HandIndexMap[id]
			if !ok {
				return newErr(InternalPlayerNotInGameButAssignedCards, "player %d missing hole indices", id)
			}
			if !runner {
				sink.Reveal(t.DeckRandomID, []int{idx[0], idx[1]})
			}
		}
		revealed := sink.GetRevealed(t.DeckRandomID)
		for _, id := range contestants {
			idx := t.HandIndexMap[id]
			hole := []card.Card{revealed[idx[0]], revealed[idx[1]]}
			holeCards[id] = hole
		}

		groups, descriptors, err := t.Variant.EvaluateHands(t.Board, holeCards)
		if err != nil {
			return err
		}
		if err := assignWinners(t, groups); err != nil {
			return err
		}
		recordShowdown(t, descriptors)
	}

	prizeMap := computePrizes(t)
	applyPrizes(t, prizeMap)
	markEliminated(t)
	recordChipsChanges(t, prizeMap)

	t.pushDisplay(Display{Kind: DisplayAwardPots, Pots: t.Pots, PrizeMap: prizeMap})
	t.pushDisplay(Display{Kind: DisplayGameResult, Pots: t.Pots, PrizeMap: prizeMap})

	t.Stage = StageSettle
	sink.WaitTimeout(waitTimeoutMs(len(t.Pots), len(t.Board), runner))
	return nil
}

// assignWinners sets each pot's winners to the first ranked group that
// intersects its owner set.
func assignWinners(t *TableState, groups []RankedGroup) error {
	for i := range t.Pots {
		pot := &t.Pots[i]
		if len(pot.Owners) == 0 {
			return newErr(InternalPotHasNoOwner, "pot %d has no owners", i)
		}
		found := false
		for _, g := range groups {
			var winners []PlayerID
			for _, pid := range g.Players {
				if pot.HasOwner(pid) {
					winners = append(winners, pid)
				}
			}
			if len(winners) > 0 {
				pot.Winners = sortedIDs(winners)
				found = true
				break
			}
		}
		if !found {
			return newErr(PotWinnerMissing, "no winner group intersects pot %d owners", i)
		}
	}
	return nil
}

func recordShowdown(t *TableState, descriptors []ShowdownDescriptor) {
	entries := make([]handhistory.ShowdownEntry, 0, len(descriptors))
	for _, d := range descriptors {
		picks := make([]card.Card, len(d.Hand.Picks))
		copy(picks, d.Hand.Picks[:])
		entries = append(entries, handhistory.ShowdownEntry{
			PlayerID: handhistory.PlayerID(d.PlayerID),
			Hole:     d.Hole,
			Category: d.Hand.Category.String(),
			Picks:    picks,
		})
	}
	t.History.SetShowdown(append([]card.Card{}, t.Board...), entries)
}

// computePrizes divides each pot's amount among its winners. Integer
// division remainders from every pot are summed into one hand-wide total
// and awarded once, to the single designated remainder player: the
// player with the lowest seat Position among those holding a non-zero
// prize and status in {Acted, Allin, Wait} (spec.md §hand-settlement;
// grounded on the original's calc_prize/get_remainder_player, which pick
// one recipient for the hand's combined odd chips by seat position, not
// one remainder per pot — see DESIGN.md).
func computePrizes(t *TableState) map[PlayerID]uint64 {
	prizes := make(map[PlayerID]uint64)
	var remainder uint64
	for _, pot := range t.Pots {
		if len(pot.Winners) == 0 {
			continue
		}
		share := pot.Amount / uint64(len(pot.Winners))
		remainder += pot.Amount - share*uint64(len(pot.Winners))
		for _, w := range pot.Winners {
			prizes[w] += share
		}
	}
	if remainder > 0 {
		if rp, ok := getRemainderPlayer(t, prizes); ok {
			prizes[rp] += remainder
		}
	}
	return prizes
}

// getRemainderPlayer picks the player with the lowest seat Position among
// those holding a non-zero prize and status in {Acted, Allin, Wait}.
func getRemainderPlayer(t *TableState, prizes map[PlayerID]uint64) (PlayerID, bool) {
	var best PlayerID
	bestPos := 0
	found := false
	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		if prizes[id] == 0 {
			continue
		}
		p := t.PlayerMap[id]
		switch p.Status {
		case StatusActed, StatusAllin, StatusWait:
		default:
			continue
		}
		if !found || p.Position < bestPos {
			best, bestPos, found = id, p.Position, true
		}
	}
	return best, found
}

func applyPrizes(t *TableState, prizes map[PlayerID]uint64) {
	for id, amt := range prizes {
		if p, ok := t.PlayerMap[id]; ok {
			p.Chips += amt
		}
	}
	t.PrizeMap = prizes
}

// markEliminated flags players with chips+deposit == 0 and a status
// other than Leave as Eliminated.
func markEliminated(t *TableState) {
	for _, p := range t.PlayerMap {
		if p.Status == StatusLeave {
			continue
		}
		if p.Chips == 0 && p.Deposit == 0 {
			p.Status = StatusEliminated
		}
	}
}

func recordChipsChanges(t *TableState, prizes map[PlayerID]uint64) {
	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		bet := int64(t.TotalBetMap[id])
		prize := int64(prizes[id])
		delta := prize - bet
		t.History.SetChipsChange(handhistory.PlayerID(id), delta)
	}
}

package holdem

import (
	"sort"

	"github.com/corepoker/holdem/poker/card"
	"github.com/corepoker/holdem/poker/evaluator"
)

// ShowdownDescriptor is one player's revealed hand at showdown.
type ShowdownDescriptor struct {
	PlayerID PlayerID
	Hole     []card.Card
	Hand     evaluator.PlayerHand
}

// RankedGroup is a set of players tied at the same hand strength, best
// group first.
type RankedGroup struct {
	Players []PlayerID
	Hand    evaluator.PlayerHand
}

// Variant abstracts hole-card count, hand evaluation, and per-variant
// bet/raise validation — the only axis on which Hold'em and Omaha differ
// in engine behavior.
type Variant interface {
	Name() string
	HoleCardCount() int
	EvaluateHands(board []card.Card, holeCards map[PlayerID][]card.Card) ([]RankedGroup, []ShowdownDescriptor, error)
	ValidateBet(betAmount, bb, playerChips uint64, pots []Pot) error
	ValidateRaise(playerChips, betted, raiseAmount, streetBet, minRaise, sumOfCurrentBets uint64, pots []Pot) error
}

func potsTotal(pots []Pot) uint64 {
	var total uint64
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

func rankGroups(hands map[PlayerID]evaluator.PlayerHand) []RankedGroup {
	ids := make([]PlayerID, 0, len(hands))
	for id := range hands {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	sort.SliceStable(ids, func(i, j int) bool {
		return evaluator.Compare(hands[ids[i]], hands[ids[j]]) > 0
	})

	var groups []RankedGroup
	for _, id := range ids {
		h := hands[id]
		if len(groups) > 0 && evaluator.Compare(groups[len(groups)-1].Hand, h) == 0 {
			groups[len(groups)-1].Players = append(groups[len(groups)-1].Players, id)
			continue
		}
		groups = append(groups, RankedGroup{Players: []PlayerID{id}, Hand: h})
	}
	return groups
}

// NLHoldem is the No-Limit Hold'em variant: 2 hole cards, best-of-7
// evaluation, and the classic NL bet/raise rules.
type NLHoldem struct{}

func (NLHoldem) Name() string          { return "nlhe" }
func (NLHoldem) HoleCardCount() int    { return 2 }

func (NLHoldem) EvaluateHands(board []card.Card, holeCards map[PlayerID][]card.Card) ([]RankedGroup, []ShowdownDescriptor, error) {
	hands := make(map[PlayerID]evaluator.PlayerHand, len(holeCards))
	descriptors := make([]ShowdownDescriptor, 0, len(holeCards))

	ids := make([]PlayerID, 0, len(holeCards))
	for id := range holeCards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		hole := holeCards[id]
		seven := append(append([]card.Card{}, hole...), board...)
		h, err := evaluator.Evaluate7(seven)
		if err != nil {
			return nil, nil, newErr(InternalFailedToRevealBoard, "evaluate hand for player %d: %v", id, err)
		}
		hands[id] = h
		descriptors = append(descriptors, ShowdownDescriptor{PlayerID: id, Hole: hole, Hand: h})
	}
	return rankGroups(hands), descriptors, nil
}

// ValidateBet implements: bet_amount >= bb OR bet_amount == player_chips.
func (NLHoldem) ValidateBet(betAmount, bb, playerChips uint64, _ []Pot) error {
	if betAmount == playerChips {
		return nil
	}
	if betAmount < bb {
		return newErr(BetTooSmall, "bet %d below big blind %d", betAmount, bb)
	}
	return nil
}

// ValidateRaise implements: raise_amount == player_chips OR
// (betted + raise_amount) >= street_bet + min_raise.
func (NLHoldem) ValidateRaise(playerChips, betted, raiseAmount, streetBet, minRaise, _ uint64, _ []Pot) error {
	if raiseAmount == playerChips {
		return nil
	}
	if betted+raiseAmount < streetBet+minRaise {
		return newErr(RaiseTooSmall, "raise to %d below required %d", betted+raiseAmount, streetBet+minRaise)
	}
	return nil
}

// PLOmaha is the Pot-Limit Omaha variant: 4 hole cards, exactly-2-of-4 +
// exactly-3-of-5 best hand, and pot-limit bet/raise caps.
type PLOmaha struct{}

func (PLOmaha) Name() string       { return "ploma" }
func (PLOmaha) HoleCardCount() int { return 4 }

func (PLOmaha) EvaluateHands(board []card.Card, holeCards map[PlayerID][]card.Card) ([]RankedGroup, []ShowdownDescriptor, error) {
	hands := make(map[PlayerID]evaluator.PlayerHand, len(holeCards))
	descriptors := make([]ShowdownDescriptor, 0, len(holeCards))

	ids := make([]PlayerID, 0, len(holeCards))
	for id := range holeCards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		hole := holeCards[id]
		h, err := evaluator.EvaluateOmaha(hole, board)
		if err != nil {
			return nil, nil, newErr(InternalFailedToRevealBoard, "evaluate omaha hand for player %d: %v", id, err)
		}
		hands[id] = h
		descriptors = append(descriptors, ShowdownDescriptor{PlayerID: id, Hole: hole, Hand: h})
	}
	return rankGroups(hands), descriptors, nil
}

// ValidateBet adds the pot-limit cap on top of the NL floor:
// max_bet = sum(pots.amount); bet > max_bet => BetExceedsPotLimit.
func (v PLOmaha) ValidateBet(betAmount, bb, playerChips uint64, pots []Pot) error {
	if err := (NLHoldem{}).ValidateBet(betAmount, bb, playerChips, nil); err != nil {
		return err
	}
	maxBet := potsTotal(pots)
	if betAmount > maxBet && betAmount != playerChips {
		return newErr(BetExceedsPotLimit, "bet %d exceeds pot limit %d", betAmount, maxBet)
	}
	return nil
}

// ValidateRaise adds the pot-limit cap:
// max_raise = sum(pots.amount) + sum_of_current_bets + (street_bet - betted).
func (v PLOmaha) ValidateRaise(playerChips, betted, raiseAmount, streetBet, minRaise, sumOfCurrentBets uint64, pots []Pot) error {
	if raiseAmount == playerChips {
		return nil
	}
	if err := (NLHoldem{}).ValidateRaise(playerChips, betted, raiseAmount, streetBet, minRaise, sumOfCurrentBets, pots); err != nil {
		return err
	}
	maxRaise := potsTotal(pots) + sumOfCurrentBets + (streetBet - betted)
	if raiseAmount > maxRaise {
		return newErr(RaiseExceedsPotLimit, "raise %d exceeds pot limit %d", raiseAmount, maxRaise)
	}
	return nil
}

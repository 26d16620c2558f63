package holdem

import "github.com/corepoker/holdem/internal/handhistory"

func toHistoryStreet(s Street) handhistory.Street {
	switch s {
	case StreetInit:
		return handhistory.StreetInit
	case StreetPreflop:
		return handhistory.StreetPreflop
	case StreetFlop:
		return handhistory.StreetFlop
	case StreetTurn:
		return handhistory.StreetTurn
	case StreetRiver:
		return handhistory.StreetRiver
	default:
		return handhistory.StreetShowdown
	}
}

// takeBet subtracts min(amount, chips) from the player's stack, updates
// bet_map/total_bet_map, and reports whether the player went all-in.
func (e *Engine) takeBet(p *Player, amount uint64) (allin bool, real uint64) {
	t := e.State
	real = amount
	if real > p.Chips {
		real = p.Chips
	}
	p.Chips -= real
	t.BetMap[p.ID] += real
	t.TotalBetMap[p.ID] += real
	return p.Chips == 0, real
}

func sumOfCurrentBets(t *TableState) uint64 {
	var total uint64
	for _, amt := range t.BetMap {
		total += amt
	}
	return total
}

func (e *Engine) handleBet(p *Player, amount uint64, sink EffectSink) error {
	t := e.State
	if t.StreetBet != 0 {
		return newErr(CantBet, "street already has a bet")
	}
	if t.BetMap[p.ID] != 0 {
		return newErr(PlayerAlreadyBet, "player %d already acted this street", p.ID)
	}
	if err := t.Variant.ValidateBet(amount, t.BB, p.Chips, t.Pots); err != nil {
		return err
	}

	allin, real := e.takeBet(p, amount)
	t.StreetBet = real
	t.MinRaise = real
	if allin {
		p.Status = StatusAllin
	} else {
		p.Status = StatusActed
	}
	t.History.AddAction(toHistoryStreet(t.Street), handhistory.Action{
		PlayerID: handhistory.PlayerID(p.ID), Kind: actionHistoryKind(allin, ActionBet), Amount: real,
	})
	t.Acting = nil
	return e.nextState(sink)
}

func (e *Engine) handleCall(p *Player, sink EffectSink) error {
	t := e.State
	callAmount := t.StreetBet - t.BetMap[p.ID]
	allin, real := e.takeBet(p, callAmount)
	if allin {
		p.Status = StatusAllin
	} else {
		p.Status = StatusActed
	}
	t.History.AddAction(toHistoryStreet(t.Street), handhistory.Action{
		PlayerID: handhistory.PlayerID(p.ID), Kind: actionHistoryKind(allin, ActionCall), Amount: real,
	})
	t.Acting = nil
	return e.nextState(sink)
}

func (e *Engine) handleCheck(p *Player, sink EffectSink) error {
	t := e.State
	if t.BetMap[p.ID] != t.StreetBet {
		return newErr(CantCheck, "player %d cannot check, owes %d", p.ID, t.StreetBet-t.BetMap[p.ID])
	}
	p.Status = StatusActed
	t.History.AddAction(toHistoryStreet(t.Street), handhistory.Action{
		PlayerID: handhistory.PlayerID(p.ID), Kind: handhistory.ActionCheck,
	})
	t.Acting = nil
	return e.nextState(sink)
}

func (e *Engine) handleFold(p *Player, sink EffectSink) error {
	t := e.State
	p.Status = StatusFold
	t.History.AddAction(toHistoryStreet(t.Street), handhistory.Action{
		PlayerID: handhistory.PlayerID(p.ID), Kind: handhistory.ActionFold,
	})
	t.Acting = nil
	return e.nextState(sink)
}

func (e *Engine) handleRaise(p *Player, amount uint64, sink EffectSink) error {
	t := e.State
	if t.StreetBet == 0 {
		return newErr(CantRaise, "no bet to raise on this street")
	}
	betted := t.BetMap[p.ID]
	if err := t.Variant.ValidateRaise(p.Chips, betted, amount, t.StreetBet, t.MinRaise, sumOfCurrentBets(t), t.Pots); err != nil {
		return err
	}

	allin, real := e.takeBet(p, amount)
	newStreetBet := betted + real
	if newStreetBet > t.StreetBet {
		t.MinRaise = newStreetBet - t.StreetBet
		t.StreetBet = newStreetBet
	}
	if allin {
		p.Status = StatusAllin
	} else {
		p.Status = StatusActed
	}
	t.History.AddAction(toHistoryStreet(t.Street), handhistory.Action{
		PlayerID: handhistory.PlayerID(p.ID), Kind: actionHistoryKind(allin, ActionRaise), Amount: real,
	})
	t.Acting = nil
	return e.nextState(sink)
}

func actionHistoryKind(allin bool, kind CustomActionKind) handhistory.ActionKind {
	if allin {
		return handhistory.ActionAllin
	}
	switch kind {
	case ActionBet:
		return handhistory.ActionBet
	case ActionCall:
		return handhistory.ActionCall
	case ActionRaise:
		return handhistory.ActionRaise
	default:
		return handhistory.ActionCheck
	}
}

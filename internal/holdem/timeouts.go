package holdem

// onActionTimeout handles a host-delivered ActionTimeout for the given
// player. A stale timeout (the player is no longer the one acting) is
// ignored. A player holding an unused time card gets one automatic
// extension per street before the timeout counts against them (spec.md
// §4.3.7, "Supplemented features" #4); any later timeout on the same
// street is a real timeout.
func (e *Engine) onActionTimeout(id PlayerID, sink EffectSink) error {
	t := e.State
	if t.Acting == nil || t.Acting.ID != id {
		return nil
	}
	p := t.PlayerMap[id]

	if p.TimeCards > 0 && !p.UsedTimeCardThisStreet {
		p.TimeCards--
		p.UsedTimeCardThisStreet = true
		extended := t.Acting.Clock + TimeCardExtraMs
		t.Acting.TimeCardClock = &extended
		sink.ActionTimeout(id, TimeCardExtraMs)
		return nil
	}

	p.Timeout++
	if p.Timeout >= MaxActionTimeoutCount && t.Mode == ModeCash {
		return e.handleSitOut(p, sink)
	}
	p.IsAFK = true

	if t.BetMap[id] == t.StreetBet {
		return e.handleCheck(p, sink)
	}
	return e.handleFold(p, sink)
}

// onWaitingTimeout handles the Settle -> Init transition: kicking
// departed players (Cash mode only), remitting rake, checkpointing, and
// resetting transient per-hand state (spec.md §4.3.1).
func (e *Engine) onWaitingTimeout(sink EffectSink) error {
	t := e.State
	if t.Stage != StageSettle {
		return nil
	}

	if t.Mode == ModeCash {
		for _, id := range orderedPlayerIDs(t.PlayerMap) {
			p := t.PlayerMap[id]
			if p.Status == StatusLeave || p.Status == StatusOut || p.Status == StatusEliminated {
				payout := p.Chips + p.Deposit
				if payout > 0 {
					sink.Withdraw(id, payout)
				}
				sink.Eject(id)
				delete(t.PlayerMap, id)
			}
		}
	}

	if t.RakeCollected > 0 {
		sink.Transfer(t.RakeCollected)
	}
	sink.Checkpoint()

	t.Stage = StageInit
	t.Street = StreetInit
	t.Acting = nil
	t.BetMap = make(map[PlayerID]uint64)
	t.TotalBetMap = make(map[PlayerID]uint64)
	t.HandIndexMap = make(map[PlayerID][2]int)
	t.Board = nil
	t.Pots = nil

	return e.maybeStartHand(sink)
}

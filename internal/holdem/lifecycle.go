package holdem

import (
	"github.com/corepoker/holdem/internal/handhistory"
)

// eligiblePlayerCount counts players who could take part in a hand: not
// Out/Eliminated, and holding chips or a queued deposit.
func eligiblePlayerCount(t *TableState) int {
	count := 0
	for _, p := range t.PlayerMap {
		if p.Status == StatusOut || p.Status == StatusEliminated {
			continue
		}
		if p.Chips > 0 || p.Deposit > 0 {
			count++
		}
	}
	return count
}

// maybeStartHand starts a new hand when the table is Init-stage and has
// at least two eligible players.
func (e *Engine) maybeStartHand(sink EffectSink) error {
	t := e.State
	if t.Stage != StageInit {
		return nil
	}
	if eligiblePlayerCount(t) < 2 {
		return nil
	}
	return e.startHand(sink)
}

func (e *Engine) fillChipsFromDeposits() {
	t := e.State
	for _, id := range orderedPlayerIDs(t.PlayerMap) {
		p := t.PlayerMap[id]
		if p.Deposit == 0 {
			continue
		}
		added := p.Deposit
		if t.MaxDeposit > 0 {
			room := int64(t.MaxDeposit) - int64(p.Chips)
			if room < 0 {
				room = 0
			}
			if added > uint64(room) {
				added = uint64(room)
			}
		}
		p.Chips += added
		p.Deposit -= added
	}
}

func (e *Engine) startHand(sink EffectSink) error {
	t := e.State

	e.fillChipsFromDeposits()
	t.HandID++
	t.History = handhistory.New(t.HandID)
	t.RakeCollected = 0
	t.Board = nil
	t.BetMap = make(map[PlayerID]uint64)
	t.TotalBetMap = make(map[PlayerID]uint64)
	t.PrizeMap = make(map[PlayerID]uint64)
	t.Pots = nil

	for _, p := range t.PlayerMap {
		p.UsedTimeCardThisStreet = false
		if p.Status == StatusFold || p.Status == StatusActed || p.Status == StatusAllin {
			p.Status = StatusWait
		}
	}

	if err := e.chooseNextButton(); err != nil {
		return err
	}
	e.arrangePlayers()

	deckID := sink.InitRandomState(52)
	t.DeckRandomID = deckID
	t.Stage = StageShareKey
	t.Street = StreetInit

	e.Logger.Info("hand starting", "handID", t.HandID, "btn", t.BTN)
	return nil
}

func (e *Engine) onRandomnessReady(sink EffectSink) error {
	t := e.State
	if t.Stage != StageShareKey {
		return nil
	}

	i := 0
	for _, id := range t.PlayerOrder {
		p := t.PlayerMap[id]
		if p.Status == StatusInit {
			continue
		}
		indices := []int{2 * i, 2*i + 1}
		t.HandIndexMap[id] = [2]int{indices[0], indices[1]}
		sink.Assign(t.DeckRandomID, id, indices)
		i++
	}

	t.Stage = StagePlay
	t.Street = StreetPreflop
	t.pushDisplay(Display{Kind: DisplayDealCards})

	if err := e.postPreflopBlinds(sink); err != nil {
		return err
	}

	return e.nextState(sink)
}

// postPreflopBlinds implements ante collection, SB/BB posting (with the
// heads-up BTN-posts-SB special case), and the left-rotation of
// player_order so the first-to-act is UTG (or BTN heads-up).
func (e *Engine) postPreflopBlinds(sink EffectSink) error {
	t := e.State

	var anteTotal uint64
	var anteOwners []PlayerID
	for _, id := range t.PlayerOrder {
		p := t.PlayerMap[id]
		if p.Status == StatusInit || t.Ante == 0 {
			continue
		}
		allin, real := e.takeBet(p, t.Ante)
		delete(t.BetMap, id)
		if allin {
			p.Status = StatusAllin
		}
		anteTotal += real
		anteOwners = append(anteOwners, id)
		t.History.AddBlind(handhistory.PlayerID(id), "ante", real)
	}
	if anteTotal > 0 {
		t.Pots = append(t.Pots, Pot{Owners: sortedIDs(anteOwners), Amount: anteTotal})
	}

	// rebuildPlayerOrder always starts the order at the first seat
	// clockwise *after* BTN — correct for 3+ players (that's SB's seat),
	// but heads-up there is no separate SB seat: BTN posts SB, so with
	// only two entries the order comes back around to [BB, BTN] and the
	// indices must be read in reverse.
	headsUp := len(t.PlayerOrder) == 2
	var sbID, bbID PlayerID
	if headsUp {
		sbID = t.PlayerOrder[1]
		bbID = t.PlayerOrder[0]
	} else {
		sbID = t.PlayerOrder[0]
		bbID = t.PlayerOrder[1]
	}

	sbPlayer := t.PlayerMap[sbID]
	allin, real := e.takeBet(sbPlayer, t.SB)
	if allin {
		sbPlayer.Status = StatusAllin
	} else {
		sbPlayer.Status = StatusActed
	}
	t.History.AddBlind(handhistory.PlayerID(sbID), "sb", real)

	bbPlayer := t.PlayerMap[bbID]
	allin, real = e.takeBet(bbPlayer, t.BB)
	if allin {
		bbPlayer.Status = StatusAllin
	} else {
		bbPlayer.Status = StatusActed
	}
	t.History.AddBlind(handhistory.PlayerID(bbID), "bb", real)

	t.StreetBet = t.BB
	t.MinRaise = t.BB

	rotate := 2
	if headsUp {
		rotate = 1
	}
	if rotate < len(t.PlayerOrder) {
		t.PlayerOrder = append(t.PlayerOrder[rotate:], t.PlayerOrder[:rotate]...)
	}

	return nil
}

func (e *Engine) handleSitOut(p *Player, sink EffectSink) error {
	p.Status = StatusLeave
	if e.State.Acting != nil && e.State.Acting.ID == p.ID {
		e.State.Acting = nil
		sink.CancelDispatch()
	}
	return e.nextState(sink)
}

func (e *Engine) handleUseTimeCard(p *Player, sink EffectSink) error {
	t := e.State
	if t.Acting == nil || t.Acting.ID != p.ID {
		return newErr(NotTheActingPlayer, "player %d is not acting", p.ID)
	}
	if p.TimeCards <= 0 {
		return newErr(NoTimeCards, "player %d has no time cards", p.ID)
	}
	if t.Acting.TimeCardClock != nil {
		return newErr(TimeCardAlreadyInUse, "player %d already used a time card this decision", p.ID)
	}
	p.TimeCards--
	extended := t.Acting.Clock + TimeCardExtraMs
	t.Acting.TimeCardClock = &extended
	sink.ActionTimeout(p.ID, TimeCardExtraMs)
	return nil
}

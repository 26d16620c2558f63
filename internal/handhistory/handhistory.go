// Package handhistory records the per-hand action log, board, showdown
// descriptors, and chip deltas the table state machine produces. It knows
// nothing about betting rules or settlement — it is a passive recorder
// the engine calls into as C4.
package handhistory

import "github.com/corepoker/holdem/poker/card"

// PlayerID mirrors the engine's player identifier. Kept as its own type
// (rather than importing the engine package) since a hand history record
// never needs anything from the engine beyond ids and amounts — the
// tournament and table components see each other only through such
// narrow, id-keyed surfaces.
type PlayerID uint64

// Street mirrors the engine's street enum closely enough for history
// purposes; Init and Showdown are the two streets that never accept a
// recorded action or pot.
type Street int

const (
	StreetInit Street = iota
	StreetPreflop
	StreetFlop
	StreetTurn
	StreetRiver
	StreetShowdown
)

// ActionKind is the player action recorded against a street.
type ActionKind int

const (
	ActionBet ActionKind = iota
	ActionCall
	ActionCheck
	ActionFold
	ActionRaise
	ActionAllin
)

// Action is one recorded player decision.
type Action struct {
	PlayerID PlayerID
	Kind     ActionKind
	Amount   uint64
}

// BlindPaid records one forced bet and who paid it.
type BlindPaid struct {
	PlayerID PlayerID
	Kind     string // "ante", "sb", or "bb"
	Amount   uint64
}

// StreetRecord is the pot size and ordered actions for one street.
type StreetRecord struct {
	Pot     uint64
	Actions []Action
}

// ChipsChangeKind is the sign of a settlement delta.
type ChipsChangeKind int

const (
	ChipsAdd ChipsChangeKind = iota
	ChipsSub
)

// ChipsChange is a signed settlement delta for one player.
type ChipsChange struct {
	PlayerID PlayerID
	Kind     ChipsChangeKind
	Amount   uint64
}

// ShowdownEntry is one player's revealed hand at showdown.
type ShowdownEntry struct {
	PlayerID PlayerID
	Hole     []card.Card
	Category string
	Picks    []card.Card
}

// Record is the complete history of a single hand.
type Record struct {
	HandID      uint64
	Board       []card.Card
	Blinds      []BlindPaid
	Streets     map[Street]*StreetRecord
	Showdown    []ShowdownEntry
	ChipsChange []ChipsChange
}

// New starts a fresh record for a hand.
func New(handID uint64) *Record {
	return &Record{
		HandID:  handID,
		Streets: make(map[Street]*StreetRecord),
	}
}

// AddBlind records a forced bet.
func (r *Record) AddBlind(playerID PlayerID, kind string, amount uint64) {
	r.Blinds = append(r.Blinds, BlindPaid{PlayerID: playerID, Kind: kind, Amount: amount})
}

// AddAction appends an action to street's log. It is a no-op on Init and
// Showdown, which never carry a recorded action.
func (r *Record) AddAction(street Street, action Action) {
	if street == StreetInit || street == StreetShowdown {
		return
	}
	sr := r.streetRecord(street)
	sr.Actions = append(sr.Actions, action)
}

// SetPot records the pot size reached on a street. It is a no-op on Init
// and Showdown.
func (r *Record) SetPot(street Street, pot uint64) {
	if street == StreetInit || street == StreetShowdown {
		return
	}
	r.streetRecord(street).Pot = pot
}

func (r *Record) streetRecord(street Street) *StreetRecord {
	sr, ok := r.Streets[street]
	if !ok {
		sr = &StreetRecord{}
		r.Streets[street] = sr
	}
	return sr
}

// SetShowdown records the final board and every contesting player's
// revealed hand.
func (r *Record) SetShowdown(board []card.Card, entries []ShowdownEntry) {
	r.Board = board
	r.Showdown = entries
}

// SetChipsChange converts a signed delta into an Add/Sub entry, omitting
// zero deltas entirely.
func (r *Record) SetChipsChange(playerID PlayerID, delta int64) {
	if delta == 0 {
		return
	}
	if delta > 0 {
		r.ChipsChange = append(r.ChipsChange, ChipsChange{PlayerID: playerID, Kind: ChipsAdd, Amount: uint64(delta)})
		return
	}
	r.ChipsChange = append(r.ChipsChange, ChipsChange{PlayerID: playerID, Kind: ChipsSub, Amount: uint64(-delta)})
}

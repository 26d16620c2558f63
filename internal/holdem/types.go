// Package holdem implements the single-table No-Limit Hold'em / Pot-Limit
// Omaha state machine: blinds, action handling, street progression,
// side-pot construction, showdown, and settlement. It is driven entirely
// by events delivered through an EffectSink — it owns no clock, no
// randomness, and no I/O of its own.
package holdem

import (
	"sort"

	"github.com/corepoker/holdem/internal/handhistory"
	"github.com/corepoker/holdem/poker/card"
)

// PlayerID is an opaque per-table player identifier.
type PlayerID uint64

// PlayerStatus is the lifecycle state of a seated player.
type PlayerStatus int

const (
	StatusInit PlayerStatus = iota
	StatusWait
	StatusWaitBB
	StatusActing
	StatusActed
	StatusAllin
	StatusFold
	StatusLeave
	StatusOut
	StatusEliminated
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusWait:
		return "wait"
	case StatusWaitBB:
		return "waitbb"
	case StatusActing:
		return "acting"
	case StatusActed:
		return "acted"
	case StatusAllin:
		return "allin"
	case StatusFold:
		return "fold"
	case StatusLeave:
		return "leave"
	case StatusOut:
		return "out"
	case StatusEliminated:
		return "eliminated"
	default:
		return "unknown"
	}
}

// Street is the ordered phase of a hand.
type Street int

const (
	StreetInit Street = iota
	StreetPreflop
	StreetFlop
	StreetTurn
	StreetRiver
	StreetShowdown
)

func (s Street) String() string {
	switch s {
	case StreetInit:
		return "init"
	case StreetPreflop:
		return "preflop"
	case StreetFlop:
		return "flop"
	case StreetTurn:
		return "turn"
	case StreetRiver:
		return "river"
	case StreetShowdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// Stage is the hand's protocol stage, tracking the random-reveal
// round-trip and the post-action phases.
type Stage int

const (
	StageInit Stage = iota
	StageShareKey
	StagePlay
	StageRunner
	StageShowdown
	StageSettle
)

// Mode selects rake/kick behavior.
type Mode int

const (
	ModeCash Mode = iota
	ModeSng
	ModeMtt
)

// ActingPlayer names the single player the handler is waiting on.
type ActingPlayer struct {
	ID            PlayerID
	Position      int
	ActionStart   int64
	Clock         int64
	TimeCardClock *int64
}

// Player is a seated player and their per-hand lifecycle state.
type Player struct {
	ID        PlayerID
	Chips     uint64
	Deposit   uint64
	Position  int
	Status    PlayerStatus
	Timeout   int
	TimeCards int
	IsAFK     bool

	// UsedTimeCardThisStreet marks the time-card auto-extension has
	// already been consumed for the current street, so only the first
	// timeout on a street grants an extension (see onActionTimeout).
	UsedTimeCardThisStreet bool
}

// Pot is a single main or side pot.
type Pot struct {
	Owners  []PlayerID
	Winners []PlayerID
	Amount  uint64
}

// HasOwner reports whether id owns a share of the pot.
func (p Pot) HasOwner(id PlayerID) bool {
	for _, o := range p.Owners {
		if o == id {
			return true
		}
	}
	return false
}

// DisplayKind names an animation hint for the host to render.
type DisplayKind int

const (
	DisplayDealCards DisplayKind = iota
	DisplayDealBoard
	DisplayCollectBets
	DisplayAwardPots
	DisplayGameResult
)

// Display is one queued animation hint. Fields not relevant to Kind are
// left zero.
type Display struct {
	Kind       DisplayKind
	Board      []card.Card
	OldPots    []Pot
	BetMap     map[PlayerID]uint64
	Pots       []Pot
	PrizeMap   map[PlayerID]uint64
}

// TableState is the full per-table state owned by the engine. It is
// reconstructed wholesale from a checkpoint and mutated only through
// HandleEvent / HandleCustomAction.
type TableState struct {
	HandID       uint64
	DeckRandomID string

	SB        uint64
	BB        uint64
	Ante      uint64
	MinRaise  uint64
	StreetBet uint64
	BTN       int
	Rake      uint16 // per-mil
	RakeCap   uint8  // in BB

	Board         []card.Card
	HandIndexMap  map[PlayerID][2]int
	BetMap        map[PlayerID]uint64
	TotalBetMap   map[PlayerID]uint64
	PrizeMap      map[PlayerID]uint64
	PlayerMap     map[PlayerID]*Player
	PlayerOrder   []PlayerID
	Pots          []Pot
	Display       []Display
	Mode          Mode
	RakeCollected uint64

	Street Street
	Stage  Stage
	Acting *ActingPlayer

	MaxDeposit uint64

	Variant Variant

	History *handhistory.Record
}

// orderedPlayerIDs returns the player-map keys sorted ascending, the
// deterministic iteration order the spec requires wherever "iteration
// must be deterministic" is called out.
func orderedPlayerIDs(m map[PlayerID]*Player) []PlayerID {
	ids := make([]PlayerID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedIDs(ids []PlayerID) []PlayerID {
	out := make([]PlayerID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *TableState) player(id PlayerID) (*Player, bool) {
	p, ok := t.PlayerMap[id]
	return p, ok
}

func (t *TableState) clearDisplay() {
	t.Display = nil
}

func (t *TableState) pushDisplay(d Display) {
	t.Display = append(t.Display, d)
}

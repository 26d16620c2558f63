// Package mtt implements the multi-table tournament controller (C7):
// registration, seat assignment, launching sub-tables, receiving
// per-table results, re-balancing players between tables, blind
// scheduling, entry-close logic, and prize distribution. It never
// mutates a table's internal state directly — it only receives
// GameResult snapshots and sends bridge directives.
package mtt

import "sort"

// PlayerID mirrors the per-table player identifier used across the
// bridge boundary.
type PlayerID uint64

// TableID identifies a sub-game table.
type TableID uint64

// RankStatus is whether a registered player is still contesting chips.
type RankStatus int

const (
	StatusAlive RankStatus = iota
	StatusOut
)

// Rank is one player's standing in the tournament.
type Rank struct {
	PlayerID PlayerID
	Chips    uint64
	Status   RankStatus
	Position int
}

// Stage is the tournament's lifecycle stage.
type Stage int

const (
	StageInit Stage = iota
	StagePlaying
	StageCompleted
)

// EntryLock gates new registrations.
type EntryLock int

const (
	EntryOpen EntryLock = iota
	EntryClosed
)

// BlindRuleItem is one row of the blind schedule: SB/BB multipliers of
// blind_base.
type BlindRuleItem struct {
	SBMultiplier uint64
	BBMultiplier uint64
}

// BlindInfo drives the blind schedule.
type BlindInfo struct {
	BlindBase     uint64
	BlindInterval int64 // ms
	Rules         []BlindRuleItem
}

// BlindAt returns (sb, bb) for the given elapsed time, per spec.md
// §4.5.5: level = time_elapsed / blind_interval; the rule at
// min(level, last) gives (sb_x, bb_x).
func (b BlindInfo) BlindAt(timeElapsed int64) (sb, bb uint64) {
	if len(b.Rules) == 0 || b.BlindInterval <= 0 {
		return 0, 0
	}
	level := timeElapsed / b.BlindInterval
	last := int64(len(b.Rules) - 1)
	if level > last {
		level = last
	}
	if level < 0 {
		level = 0
	}
	rule := b.Rules[level]
	return rule.SBMultiplier * b.BlindBase, rule.BBMultiplier * b.BlindBase
}

// DefaultBlindRules builds the spec.md §6.3 default schedule: 54
// increasing SB values from 5 to 100 000 (rounded down to a multiple of 5,
// strictly increasing), with bb = 2*sb.
func DefaultBlindRules() []BlindRuleItem {
	const steps = 54
	const first, last = 5, 100_000
	rules := make([]BlindRuleItem, steps)
	for i := 0; i < steps; i++ {
		sb := uint64(first + (last-first)*i/(steps-1))
		sb -= sb % 5
		if sb < first {
			sb = first
		}
		if i > 0 && sb <= rules[i-1].SBMultiplier {
			sb = rules[i-1].SBMultiplier + 5
		}
		rules[i] = BlindRuleItem{SBMultiplier: sb, BBMultiplier: sb * 2}
	}
	rules[steps-1] = BlindRuleItem{SBMultiplier: last, BBMultiplier: last * 2}
	return rules
}

// MttAccountData is the account data an embedding host supplies when
// launching a tournament.
type MttAccountData struct {
	StartTime     int64
	EntryCloseTime int64
	Ticket        uint64
	TableSize     int
	StartChips    uint64
	BlindInfo     BlindInfo
	PrizeRules    []uint8 // per-mil shares, rank order
	Theme         string
	SubgameBundle string
}

// State is the full tournament controller state.
type State struct {
	Ranks                []Rank
	Tables               map[TableID]TableSnapshot
	TableAssigns         map[PlayerID]TableID
	TableAssignsPending  map[PlayerID]TableID

	Stage Stage

	TimeElapsed int64
	Timestamp   int64

	EntryCloseTime int64
	IsFinalTable   bool
	EntryLock      EntryLock

	BlindInfo  BlindInfo
	PrizeRules []uint8

	TableSize     int
	StartChips    uint64
	TotalPrize    uint64
	SubgameBundle string
}

// TableSnapshot is the last reported MttTableState for one table.
type TableSnapshot struct {
	TableID uint64
	HandID  uint64
	BTN     int
	SB      uint64
	BB      uint64
	Ante    uint64
	Players []TablePlayerSnapshot
}

// TablePlayerSnapshot is one seat in a TableSnapshot.
type TablePlayerSnapshot struct {
	PlayerID      PlayerID
	Chips         uint64
	TablePosition int
	TimeCards     int
}

// NewState builds an Init-stage tournament controller from account data.
func NewState(account MttAccountData) *State {
	return &State{
		Tables:              make(map[TableID]TableSnapshot),
		TableAssigns:        make(map[PlayerID]TableID),
		TableAssignsPending: make(map[PlayerID]TableID),
		Stage:               StageInit,
		EntryCloseTime:      account.EntryCloseTime,
		BlindInfo:           account.BlindInfo,
		PrizeRules:          account.PrizeRules,
		TableSize:           account.TableSize,
		StartChips:          account.StartChips,
		SubgameBundle:       account.SubgameBundle,
	}
}

func (s *State) findRank(id PlayerID) (*Rank, int) {
	for i := range s.Ranks {
		if s.Ranks[i].PlayerID == id {
			return &s.Ranks[i], i
		}
	}
	return nil, -1
}

// sortRanks re-sorts ranks by chips descending; players with equal chips
// (notably zero, i.e. eliminated) keep their prior relative order.
func (s *State) sortRanks() {
	sort.SliceStable(s.Ranks, func(i, j int) bool {
		return s.Ranks[i].Chips > s.Ranks[j].Chips
	})
}

func aliveCount(ranks []Rank) int {
	n := 0
	for _, r := range ranks {
		if r.Status == StatusAlive {
			n++
		}
	}
	return n
}

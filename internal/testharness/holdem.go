// Package testharness provides deterministic fakes for the effect-sink
// boundaries the event-driven core calls through, so package tests can
// drive a full hand or tournament without a real host, clock, or
// randomness source.
package testharness

import (
	"math/rand"
	"testing"

	"github.com/coder/quartz"

	"github.com/corepoker/holdem/internal/holdem"
	"github.com/corepoker/holdem/poker/card"
)

// Deck builds a shuffled 52-card deck from a fixed seed, the same way a
// real host's randomness engine would hand one back from InitRandomState.
func Deck(seed int64) []card.Card {
	deck := card.StandardDeck()
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// TableSink is a fake holdem.EffectSink. It records every call, and
// answers InitRandomState/GetRevealed deterministically from a seeded
// deck so evaluator output in tests is reproducible.
type TableSink struct {
	Now int64

	// Clock, when set, backs Timestamp() with a quartz.Mock instead of
	// the plain Now field, so tests can drive ActionTimeout/WaitTimeout
	// deadlines forward with Advance instead of hand-writing timestamps.
	Clock *quartz.Mock

	Deck     []card.Card
	dealt    map[string]map[int]card.Card
	nextDeck int

	Infos    []string
	Warnings []string
	Errors   []string

	WaitTimeouts   []int64
	ActionTimeouts []struct {
		PlayerID holdem.PlayerID
		Ms       int64
	}
	Cancelled int

	Withdrawals []struct {
		PlayerID holdem.PlayerID
		Amount   uint64
	}
	Transferred  uint64
	Ejected      []holdem.PlayerID
	Started      int
	Stopped      int
	Checkpoints  int
	BridgeEvents []struct {
		DestID  uint64
		Payload any
	}
}

// NewTableSink builds a TableSink seeded with a deterministic deck.
func NewTableSink(seed int64) *TableSink {
	return &TableSink{
		Deck:  Deck(seed),
		dealt: make(map[string]map[int]card.Card),
	}
}

// NewTableSinkWithClock builds a TableSink whose Timestamp() is driven by
// a quartz.Mock, for tests that need to Advance mock-clock time past
// an ActionTimeout/WaitTimeout deadline rather than stamp Now by hand.
func NewTableSinkWithClock(tb testing.TB, seed int64) *TableSink {
	s := NewTableSink(seed)
	s.Clock = quartz.NewMock(tb)
	return s
}

func (s *TableSink) Info(msg string)  { s.Infos = append(s.Infos, msg) }
func (s *TableSink) Warn(msg string)  { s.Warnings = append(s.Warnings, msg) }
func (s *TableSink) Error(msg string) { s.Errors = append(s.Errors, msg) }

func (s *TableSink) Timestamp() int64 {
	if s.Clock != nil {
		return s.Clock.Now().UnixMilli()
	}
	return s.Now
}

func (s *TableSink) WaitTimeout(ms int64) { s.WaitTimeouts = append(s.WaitTimeouts, ms) }

func (s *TableSink) ActionTimeout(playerID holdem.PlayerID, ms int64) {
	s.ActionTimeouts = append(s.ActionTimeouts, struct {
		PlayerID holdem.PlayerID
		Ms       int64
	}{playerID, ms})
}

func (s *TableSink) CancelDispatch() { s.Cancelled++ }

// InitRandomState hands back a deterministic deck id; the harness serves
// the same underlying Deck for every id it allocates this hand.
func (s *TableSink) InitRandomState(deckSize int) string {
	s.nextDeck++
	id := deckIDFor(s.nextDeck)
	s.dealt[id] = make(map[int]card.Card)
	return id
}

func (s *TableSink) Assign(deckID string, playerID holdem.PlayerID, indices []int) {
	for _, idx := range indices {
		if idx >= 0 && idx < len(s.Deck) {
			s.dealt[deckID][idx] = s.Deck[idx]
		}
	}
}

func (s *TableSink) Reveal(deckID string, indices []int) {
	for _, idx := range indices {
		if idx >= 0 && idx < len(s.Deck) {
			s.dealt[deckID][idx] = s.Deck[idx]
		}
	}
}

func (s *TableSink) GetRevealed(deckID string) map[int]card.Card {
	out := make(map[int]card.Card, len(s.dealt[deckID]))
	for k, v := range s.dealt[deckID] {
		out[k] = v
	}
	return out
}

func (s *TableSink) Withdraw(playerID holdem.PlayerID, amount uint64) {
	s.Withdrawals = append(s.Withdrawals, struct {
		PlayerID holdem.PlayerID
		Amount   uint64
	}{playerID, amount})
}

func (s *TableSink) Transfer(amount uint64) { s.Transferred += amount }
func (s *TableSink) Eject(playerID holdem.PlayerID) { s.Ejected = append(s.Ejected, playerID) }

func (s *TableSink) StartGame() { s.Started++ }
func (s *TableSink) StopGame()  { s.Stopped++ }
func (s *TableSink) Checkpoint() { s.Checkpoints++ }

func (s *TableSink) BridgeEvent(destID uint64, payload any) {
	s.BridgeEvents = append(s.BridgeEvents, struct {
		DestID  uint64
		Payload any
	}{destID, payload})
}

func deckIDFor(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	if n <= 0 {
		n = 1
	}
	buf := make([]byte, 0, 4)
	for n > 0 {
		buf = append(buf, alphabet[(n-1)%26])
		n = (n - 1) / 26
	}
	return string(buf)
}

var _ holdem.EffectSink = (*TableSink)(nil)

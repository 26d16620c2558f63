package holdem

import "github.com/corepoker/holdem/poker/card"

// EffectSink is every capability the host exposes to the handler. The
// engine never touches a clock, a network socket, or a source of
// randomness directly — it only calls through this interface, and the
// host is free to batch, log, or replay these calls.
type EffectSink interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	Timestamp() int64

	WaitTimeout(ms int64)
	ActionTimeout(playerID PlayerID, ms int64)
	CancelDispatch()

	InitRandomState(deckSize int) (deckID string)
	Assign(deckID string, playerID PlayerID, indices []int)
	Reveal(deckID string, indices []int)
	GetRevealed(deckID string) map[int]card.Card

	Withdraw(playerID PlayerID, amount uint64)
	Transfer(amount uint64)
	Eject(playerID PlayerID)

	StartGame()
	StopGame()
	Checkpoint()

	BridgeEvent(destID uint64, payload any)
}

// EventKind tags the events a host may deliver between handler
// invocations (spec.md §5's suspension-point list).
type EventKind int

const (
	EventReady EventKind = iota
	EventGameStart
	EventWaitingTimeout
	EventActionTimeout
	EventJoin
	EventDeposit
	EventLeave
	EventCustom
	EventBridge
	EventRandomnessReady
	EventSecretsReady
	EventSubGameReady
)

// Event is one host-delivered occurrence.
type Event struct {
	Kind EventKind

	// ActionTimeout / Join / Deposit / Leave
	PlayerID PlayerID

	// Join / Deposit
	Position int
	Deposit  uint64

	// Custom
	Action CustomAction

	// Bridge
	BridgeDest    uint64
	BridgePayload any
}

// CustomActionKind enumerates the player-submitted actions spec.md §4.3.3
// defines.
type CustomActionKind int

const (
	ActionBet CustomActionKind = iota
	ActionCall
	ActionCheck
	ActionFold
	ActionRaise
	ActionSitOut
	ActionSitIn
	ActionUseTimeCard
)

// CustomAction is a player-submitted action and its amount, where
// applicable.
type CustomAction struct {
	Kind   CustomActionKind
	Amount uint64
}

package holdem

import "fmt"

// Kind tags every error a table handler invocation can return. Kinds
// prefixed Internal indicate an invariant violation (a bug in this
// engine, never a consequence of client input); every other kind is an
// expected outcome of invalid input and leaves state unchanged.
type Kind int

const (
	InvalidPlayer Kind = iota
	NotTheActingPlayer
	BetTooSmall
	RaiseTooSmall
	BetExceedsPotLimit
	RaiseExceedsPotLimit
	PlayerAlreadyBet
	CantBet
	CantCheck
	CantRaise
	NoTimeCards
	TimeCardAlreadyInUse

	InternalPlayerNotFound
	InternalPotHasNoOwner
	InternalMalformedTotalBet
	InternalCannotFindActionPlayer
	InternalPlayerNotInGameButAssignedCards
	InternalFailedToRevealBoard
	InternalUnexpectedStreet
	InternalAmountOverflow

	InvalidBridgeEvent
	InvalidTableId
	TableNotFound
	TableIsEmpty
	DuplicatedPlayerInRelocate

	NextButtonPlayerNotFound
	SinglePlayerMissing
	StrongestHandNotFound
	PotWinnerMissing

	LeaveNotAllowed
)

func (k Kind) String() string {
	names := [...]string{
		"InvalidPlayer",
		"NotTheActingPlayer",
		"BetTooSmall",
		"RaiseTooSmall",
		"BetExceedsPotLimit",
		"RaiseExceedsPotLimit",
		"PlayerAlreadyBet",
		"CantBet",
		"CantCheck",
		"CantRaise",
		"NoTimeCards",
		"TimeCardAlreadyInUse",
		"InternalPlayerNotFound",
		"InternalPotHasNoOwner",
		"InternalMalformedTotalBet",
		"InternalCannotFindActionPlayer",
		"InternalPlayerNotInGameButAssignedCards",
		"InternalFailedToRevealBoard",
		"InternalUnexpectedStreet",
		"InternalAmountOverflow",
		"InvalidBridgeEvent",
		"InvalidTableId",
		"TableNotFound",
		"TableIsEmpty",
		"DuplicatedPlayerInRelocate",
		"NextButtonPlayerNotFound",
		"SinglePlayerMissing",
		"StrongestHandNotFound",
		"PotWinnerMissing",
		"LeaveNotAllowed",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// IsInternal reports whether this kind signals an invariant violation
// rather than an expected rejection of client input.
func (k Kind) IsInternal() bool {
	return k >= InternalPlayerNotFound && k <= InternalAmountOverflow
}

// HandleError is the tagged error type every engine operation returns.
type HandleError struct {
	Kind    Kind
	Message string
}

func (e *HandleError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// newErr builds a HandleError with a formatted message.
func newErr(kind Kind, format string, args ...any) *HandleError {
	return &HandleError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

package mtt

import "fmt"

// Kind tags tournament-protocol errors, the mtt counterpart of
// holdem.Kind.
type Kind int

const (
	InvalidBridgeEvent Kind = iota
	InvalidTableId
	TableNotFound
	TableIsEmpty
	DuplicatedPlayerInRelocate
	LeaveNotAllowed
)

func (k Kind) String() string {
	switch k {
	case InvalidBridgeEvent:
		return "InvalidBridgeEvent"
	case InvalidTableId:
		return "InvalidTableId"
	case TableNotFound:
		return "TableNotFound"
	case TableIsEmpty:
		return "TableIsEmpty"
	case DuplicatedPlayerInRelocate:
		return "DuplicatedPlayerInRelocate"
	case LeaveNotAllowed:
		return "LeaveNotAllowed"
	default:
		return "Unknown"
	}
}

// Error is the tagged error type every controller operation returns.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

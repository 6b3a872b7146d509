// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// Kind classifies operation failures so the transport layer can map them to
// status codes without matching on message strings.
type Kind int

const (
	// KindInvalidArgument means the caller omitted or malformed a required
	// field. Presence is checked structurally (nil pointer, zero uuid),
	// never by truthiness, so values like card id 0 stay valid.
	KindInvalidArgument Kind = iota + 1

	// KindNotFound means the referenced game or card pack does not exist.
	KindNotFound

	// KindFailedPrecondition means the operation is not valid in the
	// game's current state, e.g. joining a game twice.
	KindFailedPrecondition

	// KindConflict means a concurrent writer changed the game between our
	// read and our save. The caller may re-read and retry.
	KindConflict

	// KindInternal means the stored state is inconsistent with what the
	// operation expected (player or card missing from the roster/hand).
	// This signals a data-integrity bug, not bad input.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindFailedPrecondition:
		return "failed_precondition"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a kinded operation error. All failures the state machine and its
// repositories produce are of this type.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Errorf builds a kinded error with a formatted message.
func Errorf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err to its Kind. Unclassified errors count as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

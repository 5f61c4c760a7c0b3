// Package naverr defines the failure kinds a navigation run can end with.
package naverr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a navigation failure.
type Kind int

const (
	// Unknown is reported for errors that did not originate in this module.
	Unknown Kind = iota
	// SensingFailure means the robot or goal could not be detected or no frame was available.
	SensingFailure
	// PlanningFailure means search exhausted its space or the direct fallback hit its cap.
	PlanningFailure
	// CommandFailure means the hub rejected a command or could not be reached.
	CommandFailure
	// Timeout means a bounded wait on the hub expired.
	Timeout
	// GoalNotReached means the path was followed to its end without goal confirmation.
	GoalNotReached
)

func (k Kind) String() string {
	switch k {
	case SensingFailure:
		return "SensingFailure"
	case PlanningFailure:
		return "PlanningFailure"
	case CommandFailure:
		return "CommandFailure"
	case Timeout:
		return "Timeout"
	case GoalNotReached:
		return "GoalNotReached"
	case Unknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a failure tagged with its Kind.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors causer interface.
func (e *Error) Cause() error { return e.cause }

// New returns an error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: err})
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

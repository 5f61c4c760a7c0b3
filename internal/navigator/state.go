package navigator

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State is a step of the navigation state machine.
type State int

const (
	StatePlanning State = iota + 1
	StateExecuting
	StateReplanning
	StateGoalReached
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePlanning:
		return "PLANNING"
	case StateExecuting:
		return "EXECUTING"
	case StateReplanning:
		return "REPLANNING"
	case StateGoalReached:
		return "GOAL_REACHED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateGoalReached || s == StateFailed
}

// MarshalText writes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(b []byte) error {
	for candidate := StatePlanning; candidate <= StateFailed; candidate++ {
		if strings.EqualFold(string(b), candidate.String()) {
			*s = candidate
			return nil
		}
	}
	return errors.Errorf("unknown state %q", string(b))
}

// Mode selects how the scene is sensed and planned.
type Mode int

const (
	// ModeGrid plans on a cell grid over a known obstacle list.
	ModeGrid Mode = iota + 1
	// ModeVision plans in pixels over what a captured frame shows.
	ModeVision
)

func (m Mode) String() string {
	switch m {
	case ModeGrid:
		return "grid"
	case ModeVision:
		return "vision"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "grid", "static":
		return ModeGrid, nil
	case "vision":
		return ModeVision, nil
	default:
		return 0, errors.Errorf("unknown mode %q", value)
	}
}

// MarshalText writes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package action

import (
	"github.com/pkg/errors"
)

type State uint8

const (
	StateUnknown State = iota
	StateBuilt
	StateSigned
	StateSubmitted
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSigned:
		return "signed"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) IsTerminal() bool {
	return s == StateConfirmed || s == StateFailed
}

var ErrInvalidTransition = errors.New("invalid state transition")

// StateMachine tracks a single envelope from construction to its outcome.
// Transitions only move forward. A rebuilt envelope gets a new machine.
type StateMachine struct {
	state State
}

func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateBuilt}
}

func (m *StateMachine) State() State {
	return m.state
}

// Transition moves the machine to next. Any state before Confirmed may fail.
func (m *StateMachine) Transition(next State) error {
	var valid bool
	switch next {
	case StateSigned:
		valid = m.state == StateBuilt
	case StateSubmitted:
		valid = m.state == StateSigned
	case StateConfirmed:
		valid = m.state == StateSubmitted
	case StateFailed:
		valid = !m.state.IsTerminal()
	}

	if !valid {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", m.state, next)
	}

	m.state = next
	return nil
}

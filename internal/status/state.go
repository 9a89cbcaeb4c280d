package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/classnotes/internal/bus"
)

// State is the client's authentication state.
type State string

const (
	Initializing State = "INITIALIZING"
	SignedOut    State = "SIGNED_OUT"
	SignedIn     State = "SIGNED_IN"
)

var validTransitions = map[State][]State{
	Initializing: {SignedOut, SignedIn},
	SignedOut:    {SignedIn},
	SignedIn:     {SignedOut},
}

// Machine tracks and enforces auth state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Initializing.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Initializing,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(bus.KindAuthStateChanged, StatusChange{From: from, To: to})
	return nil
}

// Settle moves to the given state unless the machine is already there.
func (m *Machine) Settle(to State) error {
	if m.Current() == to {
		return nil
	}
	return m.Transition(to)
}

// StatusChange is the payload for auth state change events.
type StatusChange struct {
	From State
	To   State
}

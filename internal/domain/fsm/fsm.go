// Package fsm implements the race flow state machine. Transitions are
// commanded explicitly; the machine holds no timers.
package fsm

import (
	"fmt"
	"sync"

	"github.com/okian/ghostrace/internal/domain/model"
)

// Listener observes a state change.
type Listener func(from, to model.State)

var transitions = map[model.State][]model.State{
	model.StateDisabled:    {model.StateIdle},
	model.StateIdle:        {model.StateEligible, model.StateSearching},
	model.StateEligible:    {model.StateIdle, model.StateSearching},
	model.StateSearching:   {model.StateInRace, model.StateIdle},
	model.StateInRace:      {model.StateEnded, model.StateExtendOffer, model.StateIdle},
	model.StateExtendOffer: {model.StateInRace, model.StateEnded, model.StateIdle},
	model.StateEnded:       {model.StateIdle},
}

// Allowed reports whether from -> to is a legal transition. Any state may
// move to Disabled.
func Allowed(from, to model.State) bool {
	if to == model.StateDisabled {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Machine holds the current state and its listeners.
type Machine struct {
	mu        sync.Mutex
	state     model.State
	listeners []Listener
}

// New returns a machine in the initial state.
func New(initial model.State) *Machine {
	return &Machine{state: initial}
}

// State returns the current state.
func (m *Machine) State() model.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnChange registers l. Listeners run synchronously, outside the lock, in
// registration order.
func (m *Machine) OnChange(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Set moves to the given state. Setting the current state is a silent
// no-op; it returns changed=false and no error.
func (m *Machine) Set(to model.State) (bool, error) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return false, nil
	}
	if !Allowed(from, to) {
		m.mu.Unlock()
		return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	m.state = to
	ls := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range ls {
		l(from, to)
	}
	return true, nil
}

// Force moves to the given state without checking the transition table.
// It is used to restore a persisted state and for recovery.
func (m *Machine) Force(to model.State) bool {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return false
	}
	m.state = to
	ls := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range ls {
		l(from, to)
	}
	return true
}

// Close drops every listener.
func (m *Machine) Close() {
	m.mu.Lock()
	m.listeners = nil
	m.mu.Unlock()
}

package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gigtune/gigtune/internal/bus"
)

// State is a named state of a Machine.
type State string

// Realtime connection states.
const (
	Disconnected State = "DISCONNECTED"
	Connecting   State = "CONNECTING"
	Connected    State = "CONNECTED"
)

// Store load states.
const (
	Idle    State = "IDLE"
	Loading State = "LOADING"
	Ready   State = "READY"
	Error   State = "ERROR"
)

// Table lists the states reachable from each state.
type Table map[State][]State

// ConnectionTable drives the realtime channel. A drop and an explicit close
// both land in Disconnected; only the channel knows whether to retry.
var ConnectionTable = Table{
	Disconnected: {Connecting},
	Connecting:   {Connected, Disconnected},
	Connected:    {Disconnected},
}

// LoadTable drives the sync store's bulk load.
var LoadTable = Table{
	Idle:    {Loading},
	Loading: {Ready, Error, Idle},
	Ready:   {Loading, Idle},
	Error:   {Loading, Idle},
}

// Machine tracks and enforces state transitions, publishing each accepted
// transition on the bus under kind.
type Machine struct {
	mu      sync.RWMutex
	current State
	table   Table
	kind    string
	bus     *bus.Bus
}

func NewMachine(initial State, table Table, kind string, b *bus.Bus) *Machine {
	return &Machine{
		current: initial,
		table:   table,
		kind:    kind,
		bus:     b,
	}
}

// NewConnectionMachine returns a machine over ConnectionTable starting in Disconnected.
func NewConnectionMachine(b *bus.Bus) *Machine {
	return NewMachine(Disconnected, ConnectionTable, bus.RealtimeStatusChanged, b)
}

// NewLoadMachine returns a machine over LoadTable starting in Idle.
func NewLoadMachine(b *bus.Bus) *Machine {
	return NewMachine(Idle, LoadTable, bus.StoreStatusChanged, b)
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is currently in s.
func (m *Machine) Is(s State) bool {
	return m.Current() == s
}

// Transition moves to the given state, or returns an error if the table does
// not allow it from the current state.
func (m *Machine) Transition(to State) error {
	return m.transition(nil, to)
}

// TransitionFrom is Transition guarded by the expected current state. It
// fails without side effects when the machine is not in from.
func (m *Machine) TransitionFrom(from, to State) error {
	return m.transition(&from, to)
}

func (m *Machine) transition(expect *State, to State) error {
	m.mu.Lock()
	from := m.current
	if expect != nil && *expect != from {
		m.mu.Unlock()
		return fmt.Errorf("expected state %s, machine is in %s", *expect, from)
	}
	if !slices.Contains(m.table[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	m.current = to
	m.mu.Unlock()

	m.bus.Publish(bus.Event{
		Kind:      m.kind,
		Timestamp: time.Now(),
		Payload:   StatusChange{From: from, To: to},
	})
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}

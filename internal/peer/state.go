// Package peer implements the Server (accept) and Client (connect)
// specializations of the transport session: the full
// UNCONNECTED->CONNECTED->KEY_AGREED->AUTHENTICATED->OPEN->CLOSED/FAILED
// state lattice driving one counterparty connection end to end.
package peer

import "sync"

// State is one point in the session lifecycle.
type State int

const (
	StateUnconnected State = iota
	StateConnected
	StateKeyAgreed
	StateAuthenticated
	StateOpen
	StateClosed
	StateFailed
)

// String renders a State for logging and the monitor's status endpoints.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "UNCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateKeyAgreed:
		return "KEY_AGREED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Status is the read-only snapshot internal/monitor polls and broadcasts.
// It is copied out from behind the owning peer's mutex, never shared live.
type Status struct {
	State             State
	RoundsCompleted   int
	MessagesExchanged int
	LastError         string
}

// statusBox guards the mutable status fields a Server/Client exposes to
// concurrent monitor reads while its own blocking Receive/Send loop runs on
// a different goroutine.
type statusBox struct {
	mu     sync.RWMutex
	status Status

	onTransition func(Status)
}

func (b *statusBox) set(mutate func(*Status)) Status {
	b.mu.Lock()
	mutate(&b.status)
	snapshot := b.status
	cb := b.onTransition
	b.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
	return snapshot
}

func (b *statusBox) get() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

func (b *statusBox) setState(s State) {
	b.set(func(st *Status) { st.State = s })
}

func (b *statusBox) setFailed(err error) {
	b.set(func(st *Status) {
		st.State = StateFailed
		st.LastError = err.Error()
	})
}

func (b *statusBox) incRounds() {
	b.set(func(st *Status) { st.RoundsCompleted++ })
}

func (b *statusBox) incMessages() {
	b.set(func(st *Status) { st.MessagesExchanged++ })
}

// OnTransition registers a callback invoked with every status snapshot
// after a state, round, or message-count change. internal/monitor uses this
// to drive its webhook dispatcher and /events WebSocket feed; it is purely
// observational and never delays or reorders the peer's own Messages.
func (b *statusBox) OnTransition(fn func(Status)) {
	b.mu.Lock()
	b.onTransition = fn
	b.mu.Unlock()
}

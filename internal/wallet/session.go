package wallet

import (
	"sync"

	"nft-marketplace/internal/domain"
)

// Session holds the current account. Writes are serialized; listeners
// registered with Subscribe are told about every account change.
type Session struct {
	mu        sync.Mutex
	account   domain.Account
	state     domain.ConnectionState
	listeners map[int]func(domain.Account)
	order     []int
	nextID    int
}

// NewSession creates a disconnected session.
func NewSession() *Session {
	return &Session{
		state:     domain.StateDisconnected,
		listeners: make(map[int]func(domain.Account)),
	}
}

// Init sets the account found at startup. Listeners are not notified.
func (s *Session) Init(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.state = stateFor(account)
}

// Update replaces the account and notifies listeners.
func (s *Session) Update(account domain.Account) {
	s.mu.Lock()
	s.account = account
	s.state = stateFor(account)
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(account)
	}
}

// Account returns the current account; empty when disconnected.
func (s *Session) Account() domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// State returns the connection state.
func (s *Session) State() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for account changes and returns a func that
// removes it. Listeners run in registration order.
func (s *Session) Subscribe(fn func(domain.Account)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// beginConnect moves to Connecting and returns the state to restore if
// the attempt does not produce an account.
func (s *Session) beginConnect() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = domain.StateConnecting
	return prev
}

func (s *Session) abortConnect(prev domain.ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateConnecting {
		s.state = prev
	}
}

func (s *Session) snapshot() []func(domain.Account) {
	out := make([]func(domain.Account), 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}

func stateFor(account domain.Account) domain.ConnectionState {
	if account.IsEmpty() {
		return domain.StateDisconnected
	}
	return domain.StateConnected
}

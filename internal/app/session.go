package app

import (
	"sync"

	"livequiz-service/internal/domain"
)

// Session is the in-process broadcast hub for one quiz: every connected
// viewer (host or participant) holds a subscription and receives control
// state snapshots as the host drives the progression.
type Session struct {
	id          string
	mu          sync.Mutex
	subscribers map[chan domain.ControlState]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return &Session{
		id:          id,
		subscribers: make(map[chan domain.ControlState]struct{}),
	}
}

func (s *Session) subscribe(initial domain.ControlState) (<-chan domain.ControlState, func()) {
	ch := make(chan domain.ControlState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcast fans a snapshot out to every subscriber. A full channel has its
// oldest snapshot dropped first so a slow viewer never blocks the host and
// always ends up on the latest state.
func (s *Session) broadcast(state domain.ControlState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

func (s *Session) isEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

// IsEmpty reports whether the session has no subscribers left.
func (s *Session) IsEmpty() bool {
	return s.isEmpty()
}

package service

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyview/internal/domain"
)

// Tab selects a dashboard view.
type Tab string

const (
	TabPositions Tab = "positions"
	TabHistory   Tab = "history"
	TabTrades    Tab = "trades"
)

// ParseTab normalizes s. An empty string yields the empty tab so callers can
// apply their default.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TabPositions, TabHistory, TabTrades:
		return t, nil
	default:
		return "", &domain.ValidationError{Field: "tab", Value: s, Err: domain.ErrInvalidTab}
	}
}

// Paginated reports whether the tab supports load-more.
func (t Tab) Paginated() bool {
	return t == TabHistory || t == TabTrades
}

// SessionState is a point-in-time copy of a Session.
type SessionState struct {
	Address string
	Tab     Tab
	Offset  int
	Range   domain.DateRange
	Active  bool
}

// Session is the state of one dashboard view: the searched address, the
// active tab, the date range and the pagination offset. One operation may run
// against a session at a time; overlapping calls fail with domain.ErrBusy.
type Session struct {
	id string

	mu    sync.Mutex
	busy  bool
	state SessionState
}

// NewSession creates an idle session with a random ID.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID identifies the session in logs and websocket replies.
func (s *Session) ID() string { return s.id }

// State returns a copy of the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// acquire marks the session busy. The returned func releases it.
func (s *Session) acquire() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, domain.ErrBusy
	}
	s.busy = true
	return func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}, nil
}

func (s *Session) reset(addr string, tab Tab, rng domain.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{Address: addr, Tab: tab, Range: rng, Active: true}
}

// advance moves the offset forward by n and returns the new offset.
func (s *Session) advance(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Offset += n
	return s.state.Offset
}

// rollback undoes a failed advance.
func (s *Session) rollback(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Offset = max(s.state.Offset-n, 0)
}

// Package session holds the client's authenticated identity: the in-memory
// token mirror and the lifecycle manager that keeps it in sync with the
// durable credential store.
package session

import (
	"sync"

	"github.com/ajudae/go-client/internal/client/models"
)

// Session is the authenticated identity triple. A zero Session means
// "not signed in". The three fields are always cleared together; an orphaned
// token with no user (or vice versa) is an invariant violation.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// State is the in-memory mirror of the session. It is the primary source
// when the durable store is slow or unavailable and saves a store read on
// every request once warmed. Not persisted; process restart empties it.
type State struct {
	mu      sync.RWMutex
	session Session
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

func (s *State) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

func (s *State) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

func (s *State) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.AccessToken = token
}

func (s *State) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.RefreshToken = token
}

func (s *State) SetUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.User = u
}

// Set replaces the whole session at once.
func (s *State) Set(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// Clear empties all three fields together.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
}

// Snapshot returns a copy of the current session.
func (s *State) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

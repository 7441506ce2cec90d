package session

import (
	"context"
	"encoding/json"

	"github.com/ajudae/go-client/internal/client/credstore"
	"github.com/ajudae/go-client/internal/client/models"
	"github.com/ajudae/go-client/internal/logging"
)

// Manager owns the session triple. It reconciles the durable credential
// store with the in-memory State: the store is authoritative when readable,
// the State is the fallback when it is not. Only the manager writes tokens;
// the dispatcher and the auth service both go through it.
type Manager struct {
	store credstore.Store
	state *State
	log   logging.Logger
}

// NewManager builds a Manager over the given store.
func NewManager(store credstore.Store, log logging.Logger) *Manager {
	return &Manager{store: store, state: NewState(), log: log.With("component", "session")}
}

// AccessToken resolves the current access token: durable store first, then
// the in-memory mirror. A store hit refreshes the mirror; a store failure is
// logged and treated as "absent".
func (m *Manager) AccessToken(ctx context.Context) string {
	return m.resolve(ctx, credstore.KeyAccessToken, m.state.AccessToken, m.state.SetAccessToken)
}

// RefreshToken resolves the current refresh token the same way.
func (m *Manager) RefreshToken(ctx context.Context) string {
	return m.resolve(ctx, credstore.KeyRefreshToken, m.state.RefreshToken, m.state.SetRefreshToken)
}

func (m *Manager) resolve(ctx context.Context, key string, fromState func() string, mirror func(string)) string {
	value, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Warn(ctx, "secure store read failed, falling back to in-memory token", "key", key, "error", err)
		return fromState()
	}
	if value == nil {
		return fromState()
	}
	mirror(string(value))
	return string(value)
}

// SetAccessToken records a newly obtained access token: the mirror first
// (it must never lag behind), then best-effort durable persistence.
func (m *Manager) SetAccessToken(ctx context.Context, token string) {
	m.state.SetAccessToken(token)
	if err := m.store.Set(ctx, credstore.KeyAccessToken, []byte(token)); err != nil {
		m.log.Warn(ctx, "failed to persist access token", "error", err)
	}
}

// SetRefreshToken records a rotated refresh token.
func (m *Manager) SetRefreshToken(ctx context.Context, token string) {
	m.state.SetRefreshToken(token)
	if err := m.store.Set(ctx, credstore.KeyRefreshToken, []byte(token)); err != nil {
		m.log.Warn(ctx, "failed to persist refresh token", "error", err)
	}
}

// Persist installs a full session after login: the in-memory copy becomes
// valid immediately, then all three durable keys are written in one
// transaction. A persistence failure is logged but not returned; the
// in-memory session remains authoritative.
func (m *Manager) Persist(ctx context.Context, access, refresh string, user *models.User) {
	m.state.Set(Session{AccessToken: access, RefreshToken: refresh, User: user})

	userJSON, err := json.Marshal(user)
	if err != nil {
		m.log.Warn(ctx, "failed to serialize user for persistence", "error", err)
		return
	}

	values := map[string][]byte{
		credstore.KeyAccessToken: []byte(access),
		credstore.KeyUser:        userJSON,
	}
	if refresh != "" {
		values[credstore.KeyRefreshToken] = []byte(refresh)
	}

	if err := m.store.SetMany(ctx, values); err != nil {
		m.log.Warn(ctx, "failed to persist session, continuing with in-memory copy", "error", err)
	}
}

// Clear ends the session: the in-memory copy is wiped immediately, the
// durable store best-effort. Safe to call when no session exists.
func (m *Manager) Clear(ctx context.Context) {
	m.state.Clear()
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn(ctx, "failed to clear credential store", "error", err)
	}
}

// Restore loads a previously persisted session at process start. Absence of
// any required field, a store failure, or a corrupt user record all leave
// the session empty rather than failing: the app simply starts signed out.
// It returns the restored user, or nil when there is nothing to restore.
func (m *Manager) Restore(ctx context.Context) *models.User {
	access, err := m.store.Get(ctx, credstore.KeyAccessToken)
	if err != nil {
		m.log.Warn(ctx, "secure store unavailable during restore", "error", err)
		return nil
	}
	userJSON, err := m.store.Get(ctx, credstore.KeyUser)
	if err != nil {
		m.log.Warn(ctx, "secure store unavailable during restore", "error", err)
		return nil
	}
	if access == nil || userJSON == nil {
		return nil
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		m.log.Warn(ctx, "stored user record is corrupt, starting signed out", "error", err)
		return nil
	}

	refresh, err := m.store.Get(ctx, credstore.KeyRefreshToken)
	if err != nil {
		m.log.Warn(ctx, "failed to read refresh token during restore", "error", err)
		refresh = nil
	}

	m.state.Set(Session{
		AccessToken:  string(access),
		RefreshToken: string(refresh),
		User:         &user,
	})
	return &user
}

// Current returns a read-only snapshot of the in-memory session.
func (m *Manager) Current() Session {
	return m.state.Snapshot()
}

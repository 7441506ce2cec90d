// Package services contains the application services of the client. The
// auth service orchestrates login, logout and session restoration; the
// domain services are thin wrappers over the request dispatcher.
package services

import (
	"context"

	"github.com/ajudae/go-client/internal/client/models"
	"github.com/ajudae/go-client/internal/client/session"
	"github.com/ajudae/go-client/internal/logging"
)

// AuthAPI is the slice of the API client the auth service needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, name, email, password string, role models.Role) (*models.LoginResponse, error)
}

// Sessions is the slice of session.Manager the auth service needs.
type Sessions interface {
	Persist(ctx context.Context, access, refresh string, user *models.User)
	Clear(ctx context.Context)
	Restore(ctx context.Context) *models.User
	Current() session.Session
}

// AuthService is the boundary the UI talks to for identity state.
type AuthService struct {
	api      AuthAPI
	sessions Sessions
	log      logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client
// and session manager.
func NewAuthService(api AuthAPI, sessions Sessions, log logging.Logger) *AuthService {
	return &AuthService{api: api, sessions: sessions, log: log.With("component", "auth")}
}

// Login authenticates and installs the resulting session. From the caller's
// point of view persistence is atomic: the in-memory session is valid as
// soon as Login returns, whether or not the durable write succeeded.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.sessions.Persist(ctx, resp.AccessToken, resp.RefreshToken, resp.User)
	s.log.Info(ctx, "signed in", "user", resp.User.Email, "role", resp.User.Role)
	return resp.User, nil
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	resp, err := s.api.Register(ctx, name, email, password, role)
	if err != nil {
		return nil, err
	}

	s.sessions.Persist(ctx, resp.AccessToken, resp.RefreshToken, resp.User)
	return resp.User, nil
}

// Logout ends the session. Calling it with no session is a no-op.
func (s *AuthService) Logout(ctx context.Context) {
	s.sessions.Clear(ctx)
	s.log.Info(ctx, "signed out")
}

// Restore loads a persisted session at process start. Returns the restored
// user, or nil when the app starts signed out.
func (s *AuthService) Restore(ctx context.Context) *models.User {
	return s.sessions.Restore(ctx)
}

// Current returns the session snapshot.
func (s *AuthService) Current() session.Session {
	return s.sessions.Current()
}

// IsSignedIn reports whether a user is currently authenticated.
func (s *AuthService) IsSignedIn() bool {
	return s.sessions.Current().User != nil
}

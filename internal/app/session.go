package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"studyhub-client/internal/credential"
	"studyhub-client/internal/domain"
)

// AuthGateway is the remote surface the session facade needs.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.TokenGrant, error)
	Register(ctx context.Context, reg domain.Registration) error
	Logout(ctx context.Context) error
}

// Navigator redirects the user to a named route.
type Navigator interface {
	Navigate(route string)
}

// SessionState is what an auth page renders.
type SessionState struct {
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// SessionFacade exposes login, register and logout as single operations over
// the credential store, the auth endpoints and navigation.
type SessionFacade struct {
	creds  *credential.Store
	auth   AuthGateway
	nav    Navigator
	logger *zap.Logger

	mu       sync.Mutex
	inflight int
	err      string
}

func NewSessionFacade(creds *credential.Store, auth AuthGateway, nav Navigator, logger *zap.Logger) *SessionFacade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionFacade{creds: creds, auth: auth, nav: nav, logger: logger}
}

func (f *SessionFacade) State() SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SessionState{
		IsAuthenticated: f.creds.IsAuthenticated(),
		Loading:         f.inflight > 0,
		Error:           f.err,
	}
}

// Login signs in and moves to the dashboard. A failure leaves any existing
// session in place and does not navigate.
func (f *SessionFacade) Login(ctx context.Context, creds domain.Credentials) error {
	f.begin()
	grant, err := f.auth.Login(ctx, creds)
	if err != nil {
		f.end(err, "Login failed")
		return err
	}
	if err := f.creds.Set(ctx, grant.AccessToken); err != nil {
		// The session lives in memory for this run even when it could not be persisted.
		f.logger.Warn("persist session token", zap.Error(err))
	}
	f.end(nil, "")
	f.logger.Info("signed in", zap.String("username", creds.Username))
	f.nav.Navigate(domain.RouteDashboard)
	return nil
}

// Register creates an account and moves to the login page without signing in.
func (f *SessionFacade) Register(ctx context.Context, reg domain.Registration) error {
	f.begin()
	if err := f.auth.Register(ctx, reg); err != nil {
		f.end(err, "Registration failed")
		return err
	}
	f.end(nil, "")
	f.logger.Info("registered", zap.String("username", reg.Username))
	f.nav.Navigate(domain.RouteLogin)
	return nil
}

// Logout tells the server best-effort, then always drops the local session.
func (f *SessionFacade) Logout(ctx context.Context) {
	f.begin()
	if err := f.auth.Logout(ctx); err != nil {
		f.logger.Warn("server logout failed", zap.Error(err))
	}
	if err := f.creds.Clear(context.WithoutCancel(ctx)); err != nil {
		f.logger.Warn("clear session token", zap.Error(err))
	}
	f.end(nil, "")
	f.nav.Navigate(domain.RouteLogin)
}

func (f *SessionFacade) ResetError() {
	f.mu.Lock()
	f.err = ""
	f.mu.Unlock()
}

func (f *SessionFacade) begin() {
	f.mu.Lock()
	f.inflight++
	f.err = ""
	f.mu.Unlock()
}

func (f *SessionFacade) end(err error, fallback string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if err != nil {
		f.err = domain.Message(err, fallback)
	}
}

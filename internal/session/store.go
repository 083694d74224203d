// Package session owns the process-wide authenticated-user state: who is
// logged in, their token, and nothing else. It is the single source of truth
// for every view and the token source for the gateway.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/localstore"
)

// AuthAPI is the slice of the gateway the store needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (api.TokenResponse, error)
	Me(ctx context.Context) (domain.User, error)
}

// Session is the authenticated identity for this client instance.
type Session struct {
	Token     string
	User      domain.User
	CreatedAt time.Time
}

// Store holds the current session, persists it to local storage, and notifies
// subscribers on every change.
type Store struct {
	mu    sync.RWMutex
	local *localstore.Store
	auth  AuthAPI

	current Session
	active  bool
	subs    []func(Session, bool)
}

// NewStore builds a store. auth may be nil at construction and attached with
// SetGateway afterwards; the gateway needs the store as its token source, so
// one of the two has to be wired late.
func NewStore(local *localstore.Store, auth AuthAPI) *Store {
	return &Store{local: local, auth: auth}
}

func (s *Store) SetGateway(auth AuthAPI) {
	s.mu.Lock()
	s.auth = auth
	s.mu.Unlock()
}

// Token implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return "", false
	}
	return s.current.Token, s.current.Token != ""
}

// Current returns the session, if one is active.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.active
}

// Subscribe registers a callback invoked after every session change. The
// callback receives the new session and whether one is active.
func (s *Store) Subscribe(fn func(Session, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Login exchanges credentials for a token, resolves the user behind it, and
// stores both. On any failure the prior session state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	s.mu.RLock()
	auth := s.auth
	s.mu.RUnlock()

	tok, err := auth.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	// The token must be visible to the gateway before /auth/me, and rolled
	// back if resolving the user fails.
	s.mu.Lock()
	prev, prevActive := s.current, s.active
	s.current = Session{Token: tok.AccessToken, CreatedAt: time.Now()}
	s.active = true
	s.mu.Unlock()

	user, err := auth.Me(ctx)
	if err != nil {
		s.mu.Lock()
		s.current, s.active = prev, prevActive
		s.mu.Unlock()
		// A 401 from /auth/me fires the gateway's logout hook, which wipes
		// the persisted session; put the prior one back so disk and memory
		// agree.
		if prevActive {
			_ = s.local.SetToken(prev.Token)
			_ = s.local.SetUser(prev.User)
		}
		return Session{}, err
	}

	s.mu.Lock()
	s.current.User = user
	sess := s.current
	s.mu.Unlock()

	if err := s.local.SetToken(sess.Token); err != nil {
		return Session{}, fmt.Errorf("persist token: %w", err)
	}
	if err := s.local.SetUser(user); err != nil {
		return Session{}, fmt.Errorf("persist user: %w", err)
	}

	s.notify()
	return sess, nil
}

// Logout clears the in-memory session and the persisted token/user
// synchronously, so the next gateway call carries no credential. Safe to call
// with no active session; also used as the gateway's 401 hook.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = Session{}
	s.active = false
	s.mu.Unlock()

	_ = s.local.RemoveToken()
	_ = s.local.RemoveUser()

	s.notify()
}

// UpdateAuthUser merges a partial user record into the current session
// without a network round-trip. Zero-valued fields are left as they were.
func (s *Store) UpdateAuthUser(patch domain.User) {
	s.mu.Lock()
	if s.active {
		if patch.ID != 0 {
			s.current.User.ID = patch.ID
		}
		if patch.Name != "" {
			s.current.User.Name = patch.Name
		}
		if patch.Email != "" {
			s.current.User.Email = patch.Email
		}
		if patch.Role != "" {
			s.current.User.Role = patch.Role
		}
		_ = s.local.SetUser(s.current.User)
	}
	s.mu.Unlock()

	s.notify()
}

// Restore rehydrates the session from local storage at process start. The
// persisted token is trusted tentatively until a 401 contradicts it, with one
// exception: a token that is a JWT and already expired is discarded now
// instead of on the first failing call.
func (s *Store) Restore(ctx context.Context) {
	tok, ok := s.local.Token()
	if !ok {
		return
	}
	if tokenExpired(tok) {
		_ = s.local.RemoveToken()
		_ = s.local.RemoveUser()
		return
	}

	user, haveUser := s.local.User()

	s.mu.Lock()
	auth := s.auth
	s.current = Session{Token: tok, User: user, CreatedAt: time.Now()}
	s.active = true
	s.mu.Unlock()

	if !haveUser {
		// Token without a user record: resolve it, or give up the session.
		resolved, err := auth.Me(ctx)
		if err != nil {
			s.Logout()
			return
		}
		s.mu.Lock()
		s.current.User = resolved
		s.mu.Unlock()
		_ = s.local.SetUser(resolved)
	}

	s.notify()
}

func (s *Store) notify() {
	s.mu.RLock()
	sess, active := s.current, s.active
	subs := make([]func(Session, bool), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(sess, active)
	}
}

// tokenExpired peeks at a JWT's expiry without verifying its signature.
// Opaque (non-JWT) tokens and tokens without an exp claim report false.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

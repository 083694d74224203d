package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/localstore"
)

// fakeAuth implements AuthAPI with canned responses.
type fakeAuth struct {
	loginErr error
	meErr    error
	token    string
	user     domain.User
	meCalls  int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (api.TokenResponse, error) {
	if f.loginErr != nil {
		return api.TokenResponse{}, f.loginErr
	}
	return api.TokenResponse{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeAuth) Me(ctx context.Context) (domain.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return domain.User{}, f.meErr
	}
	return f.user, nil
}

// newTestStore returns a session store over a throwaway state dir.
func newTestStore(t *testing.T, auth AuthAPI) (*Store, *localstore.Store) {
	t.Helper()
	local, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	return NewStore(local, auth), local
}

// TestLoginStoresTokenAndUser verifies a successful login persists both halves
// of the session and exposes the token to the gateway.
func TestLoginStoresTokenAndUser(t *testing.T) {
	auth := &fakeAuth{
		token: "tok-abc",
		user:  domain.User{ID: 3, Email: "a@b.c", Name: "Ana", Role: domain.RoleJobSeeker},
	}
	s, local := newTestStore(t, auth)

	notified := 0
	s.Subscribe(func(Session, bool) { notified++ })

	sess, err := s.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.User.Name != "Ana" {
		t.Errorf("session user = %+v", sess.User)
	}
	if tok, ok := s.Token(); !ok || tok != "tok-abc" {
		t.Errorf("Token() = %q, %v", tok, ok)
	}
	if tok, ok := local.Token(); !ok || tok != "tok-abc" {
		t.Errorf("persisted token = %q, %v", tok, ok)
	}
	if u, ok := local.User(); !ok || u.ID != 3 {
		t.Errorf("persisted user = %+v, %v", u, ok)
	}
	if notified != 1 {
		t.Errorf("notifications = %d, want 1", notified)
	}
}

// TestLoginFailureLeavesStateUntouched verifies a rejected login does not
// disturb an existing session.
func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	auth := &fakeAuth{token: "tok-1", user: domain.User{ID: 1, Name: "First", Role: domain.RoleEmployer}}
	s, _ := newTestStore(t, auth)

	if _, err := s.Login(context.Background(), "first@x.y", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	auth.loginErr = errors.New("incorrect email or password")
	if _, err := s.Login(context.Background(), "other@x.y", "bad"); err == nil {
		t.Fatal("expected error")
	}

	sess, active := s.Current()
	if !active || sess.User.Name != "First" || sess.Token != "tok-1" {
		t.Errorf("prior session disturbed: %+v active=%v", sess, active)
	}
}

// TestLoginRollsBackWhenMeFails verifies the token is not kept if the user
// behind it cannot be resolved.
func TestLoginRollsBackWhenMeFails(t *testing.T) {
	auth := &fakeAuth{token: "tok-2", meErr: errors.New("could not validate credentials")}
	s, local := newTestStore(t, auth)

	if _, err := s.Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.Token(); ok {
		t.Error("token still active after failed login")
	}
	if _, ok := local.Token(); ok {
		t.Error("token persisted despite failed login")
	}
}

// TestLoginMeFailureKeepsPersistedSession verifies the full rollback against
// a real gateway: a 401 from /auth/me fires the forced-logout hook, and the
// prior session must come back both in memory and on disk.
func TestLoginMeFailureKeepsPersistedSession(t *testing.T) {
	logins := 0
	rejectMe := false
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		logins++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": fmt.Sprintf("tok-%d", logins), "token_type": "bearer",
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if rejectMe {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Could not validate credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(domain.User{ID: 1, Email: "a@b.c", Name: "First", Role: domain.RoleEmployer})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	local, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	s := NewStore(local, nil)
	gw := api.New(srv.URL, s)
	gw.SetAuthFailureHook(s.Logout)
	s.SetGateway(gw)

	if _, err := s.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("first login: %v", err)
	}

	rejectMe = true
	if _, err := s.Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatal("expected error from second login")
	}

	sess, active := s.Current()
	if !active || sess.Token != "tok-1" {
		t.Errorf("in-memory session = %+v active=%v, want tok-1 restored", sess, active)
	}
	if tok, ok := local.Token(); !ok || tok != "tok-1" {
		t.Errorf("persisted token = %q, %v; want tok-1 restored", tok, ok)
	}
	if u, ok := local.User(); !ok || u.Name != "First" {
		t.Errorf("persisted user = %+v, %v; want prior user restored", u, ok)
	}
}

// TestLogoutClearsEverything verifies logout wipes memory and disk in one call.
func TestLogoutClearsEverything(t *testing.T) {
	auth := &fakeAuth{token: "tok-3", user: domain.User{ID: 5, Role: domain.RoleAdmin}}
	s, local := newTestStore(t, auth)

	if _, err := s.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	s.Logout()

	if _, active := s.Current(); active {
		t.Error("session still active after logout")
	}
	if _, ok := local.Token(); ok {
		t.Error("token survived logout")
	}
	if _, ok := local.User(); ok {
		t.Error("user record survived logout")
	}
}

// TestUpdateAuthUserMergesPartial verifies zero-valued fields in the patch do
// not clobber existing session fields.
func TestUpdateAuthUserMergesPartial(t *testing.T) {
	auth := &fakeAuth{token: "tok-4", user: domain.User{ID: 7, Email: "old@x.y", Name: "Old", Role: domain.RoleJobSeeker}}
	s, local := newTestStore(t, auth)

	if _, err := s.Login(context.Background(), "old@x.y", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	s.UpdateAuthUser(domain.User{Name: "New Name"})

	sess, _ := s.Current()
	if sess.User.Name != "New Name" {
		t.Errorf("Name = %q", sess.User.Name)
	}
	if sess.User.Email != "old@x.y" || sess.User.Role != domain.RoleJobSeeker || sess.User.ID != 7 {
		t.Errorf("merge clobbered fields: %+v", sess.User)
	}
	if u, ok := local.User(); !ok || u.Name != "New Name" {
		t.Errorf("persisted user = %+v, %v", u, ok)
	}
}

// TestRestoreTrustsPersistedToken verifies restore rehydrates the session from
// disk without a network call when both token and user are present.
func TestRestoreTrustsPersistedToken(t *testing.T) {
	auth := &fakeAuth{}
	s, local := newTestStore(t, auth)

	if err := local.SetToken("opaque-token"); err != nil {
		t.Fatal(err)
	}
	if err := local.SetUser(domain.User{ID: 9, Name: "Back", Role: domain.RoleEmployer}); err != nil {
		t.Fatal(err)
	}

	s.Restore(context.Background())

	sess, active := s.Current()
	if !active || sess.Token != "opaque-token" || sess.User.ID != 9 {
		t.Errorf("restored session = %+v active=%v", sess, active)
	}
	if auth.meCalls != 0 {
		t.Errorf("Me called %d times during offline restore", auth.meCalls)
	}
}

// TestRestoreDiscardsExpiredJWT verifies a persisted JWT with a past expiry is
// dropped at restore instead of on the first failing request.
func TestRestoreDiscardsExpiredJWT(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@b.c",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	s, local := newTestStore(t, &fakeAuth{})
	if err := local.SetToken(signed); err != nil {
		t.Fatal(err)
	}
	if err := local.SetUser(domain.User{ID: 1}); err != nil {
		t.Fatal(err)
	}

	s.Restore(context.Background())

	if _, active := s.Current(); active {
		t.Error("expired token produced an active session")
	}
	if _, ok := local.Token(); ok {
		t.Error("expired token not removed from storage")
	}
}

// TestRestoreWithNoToken verifies restore on a fresh state dir is a no-op.
func TestRestoreWithNoToken(t *testing.T) {
	s, _ := newTestStore(t, &fakeAuth{})
	s.Restore(context.Background())
	if _, active := s.Current(); active {
		t.Error("session active with no persisted token")
	}
}

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/localstore"
	"github.com/bdcmjobs/jobdesk/internal/session"
)

// testEnv wires a real gateway, session store, and server against a fake
// backend.
type testEnv struct {
	server   *Server
	handler  http.Handler
	sessions *session.Store
	backend  *http.ServeMux
}

// newTestEnv builds the full stack over the given backend mux. The mux routes
// not registered by a test return 404 with a JSON detail, like the backend.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern == "" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Not found"}`))
			return
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	local, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}

	var env testEnv
	env.sessions = session.NewStore(local, nil)
	gateway := api.New(srv.URL, env.sessions)
	gateway.SetAuthFailureHook(env.sessions.Logout)
	env.sessions.SetGateway(gateway)

	env.server = NewServer(gateway, env.sessions, local)
	env.handler = env.server.Routes()
	env.backend = mux
	return &env
}

func jsonHandler(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

// loginAs seeds the backend auth endpoints and logs the user in directly
// through the session store.
func (env *testEnv) loginAs(t *testing.T, user domain.User) {
	t.Helper()
	env.backend.HandleFunc("/auth/token", jsonHandler(map[string]string{
		"access_token": "test-token", "token_type": "bearer",
	}))
	env.backend.HandleFunc("/auth/me", jsonHandler(user))
	if _, err := env.sessions.Login(context.Background(), user.Email, "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func (env *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (env *testEnv) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

var (
	seekerUser   = domain.User{ID: 3, Email: "sari@x.y", Name: "Sari", Role: domain.RoleJobSeeker}
	employerUser = domain.User{ID: 8, Email: "budi@x.y", Name: "Budi", Role: domain.RoleEmployer}
	adminUser    = domain.User{ID: 1, Email: "admin@x.y", Name: "Root", Role: domain.RoleAdmin}
)

// TestAnonymousRedirectedToLoginWithReturnTo verifies role-gated routes send
// logged-out visitors to login carrying the requested path.
func TestAnonymousRedirectedToLoginWithReturnTo(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/my-jobs")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/login" {
		t.Errorf("Location path = %q", loc.Path)
	}
	if got := loc.Query().Get("returnTo"); got != "/my-jobs" {
		t.Errorf("returnTo = %q", got)
	}
}

// TestWrongRoleGetsAccessDenied verifies direct navigation cannot bypass a
// hidden link.
func TestWrongRoleGetsAccessDenied(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)

	rec := env.get(t, "/admin")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Access denied") {
		t.Error("denied page not rendered")
	}
}

// TestLoginHonorsReturnTo verifies a successful login lands on the originally
// requested path.
func TestLoginHonorsReturnTo(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("/auth/token", jsonHandler(map[string]string{
		"access_token": "tok", "token_type": "bearer",
	}))
	env.backend.HandleFunc("/auth/me", jsonHandler(seekerUser))

	rec := env.postForm(t, "/login", url.Values{
		"email":    {seekerUser.Email},
		"password": {"pw"},
		"returnTo": {"/jobs/4/apply"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/jobs/4/apply" {
		t.Errorf("Location = %q", loc)
	}
	if _, active := env.sessions.Current(); !active {
		t.Error("no active session after login")
	}
}

// TestLoginRejectsExternalReturnTo verifies returnTo cannot redirect off-site.
func TestLoginRejectsExternalReturnTo(t *testing.T) {
	env := newTestEnv(t)
	env.backend.HandleFunc("/auth/token", jsonHandler(map[string]string{
		"access_token": "tok", "token_type": "bearer",
	}))
	env.backend.HandleFunc("/auth/me", jsonHandler(seekerUser))

	rec := env.postForm(t, "/login", url.Values{
		"email":    {seekerUser.Email},
		"password": {"pw"},
		"returnTo": {"https://evil.example/phish"},
	})
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

// TestGatewayUnauthorizedClearsSession verifies a 401 from any fetch wipes
// the session, no matter which page triggered it.
func TestGatewayUnauthorizedClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)
	env.backend.HandleFunc("/applications/user/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	})

	env.get(t, "/my-applications")

	if _, active := env.sessions.Current(); active {
		t.Error("session survived a 401")
	}
}

// TestSalaryRangeRejectedBeforeNetwork verifies the salary invariant is
// enforced client-side: no create request reaches the backend.
func TestSalaryRangeRejectedBeforeNetwork(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, employerUser)

	posted := false
	env.backend.HandleFunc("/job-posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = true
		}
		w.Write([]byte(`{"data": [], "total": 0}`))
	})

	rec := env.postForm(t, "/my-jobs/new", url.Values{
		"title":        {"Backend Engineer"},
		"company":      {"BDCM"},
		"location":     {"Jakarta"},
		"job_type":     {"Full-time"},
		"description":  {"Go services"},
		"requirements": {"Go\nSQL"},
		"salary_min":   {"9000000"},
		"salary_max":   {"8000000"},
	})

	if posted {
		t.Error("create request reached the backend despite invalid salary range")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Minimum salary cannot be greater than maximum salary") {
		t.Error("salary error not rendered")
	}
}

// TestApplyGateRedirectsAnonymous verifies the apply view's own gating, not
// the generic middleware, handles logged-out visitors.
func TestApplyGateRedirectsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/jobs/12/apply")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/login" {
		t.Errorf("Location path = %q", loc.Path)
	}
	if got := loc.Query().Get("returnTo"); got != "/jobs/12/apply" {
		t.Errorf("returnTo = %q", got)
	}
	if got := loc.Query().Get("msg"); got != "Please login to apply for this job" {
		t.Errorf("msg = %q", got)
	}
}

// TestApplyGateRedirectsMissingProfile verifies a seeker without a profile is
// sent to the profile form with the apply path preserved.
func TestApplyGateRedirectsMissingProfile(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)
	env.backend.HandleFunc("/profiles/user/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Profile not found for user 3"}`))
	})

	rec := env.get(t, "/jobs/12/apply")
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/profile" {
		t.Errorf("Location path = %q, want /profile", loc.Path)
	}
	if got := loc.Query().Get("returnPath"); got != "/jobs/12/apply" {
		t.Errorf("returnPath = %q", got)
	}
}

// TestApplyBlockedWhenAccepted verifies an accepted application disables the
// form while still rendering the page.
func TestApplyBlockedWhenAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)
	env.backend.HandleFunc("/profiles/user/3", jsonHandler(domain.Profile{ID: 2, UserID: 3, FullName: "Sari"}))
	env.backend.HandleFunc("/applications/user/3", jsonHandler(map[string]any{
		"items": []domain.Application{{ID: 1, JobPostID: 12, UserID: 3, Status: domain.StatusAccepted}},
		"total": 1,
	}))
	env.backend.HandleFunc("/job-posts/12", jsonHandler(domain.JobPosting{ID: 12, Title: "Data Analyst"}))

	rec := env.get(t, "/jobs/12/apply")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "You have already been accepted for this job.") {
		t.Error("accepted notice missing")
	}
	if strings.Contains(body, "Submit Application") {
		t.Error("form rendered despite ineligibility")
	}
}

// TestEmployerApplicationsFanOut verifies the applications page joins jobs,
// applications, and applicant names, with a placeholder for a failed lookup.
func TestEmployerApplicationsFanOut(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, employerUser)
	env.backend.HandleFunc("/job-posts/user/8", jsonHandler(map[string]any{
		"data": []domain.JobPosting{
			{ID: 1, Title: "Backend Engineer", UserID: 8},
			{ID: 2, Title: "Data Analyst", UserID: 8},
		},
		"total": 2,
	}))
	env.backend.HandleFunc("/applications/job/1", jsonHandler(map[string]any{
		"items": []domain.Application{
			{ID: 10, JobPostID: 1, UserID: 3, Status: domain.StatusPending, CVFilename: "cv.pdf"},
		},
	}))
	env.backend.HandleFunc("/applications/job/2", jsonHandler(map[string]any{
		"items": []domain.Application{
			{ID: 11, JobPostID: 2, UserID: 99, Status: domain.StatusAccepted, CVFilename: "cv2.pdf"},
		},
	}))
	env.backend.HandleFunc("/users/3", jsonHandler(seekerUser))
	// /users/99 is not registered: lookup fails, placeholder expected.

	rec := env.get(t, "/applications")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Sari") {
		t.Error("resolved applicant name missing")
	}
	if !strings.Contains(body, "<td>-</td>") {
		t.Error("placeholder for failed name lookup missing")
	}
	if !strings.Contains(body, "Accept") || !strings.Contains(body, "Reject") {
		t.Error("pending application lacks accept/reject actions")
	}
}

// TestAdminCannotDeleteSelf verifies the self-delete guard short-circuits
// before the gateway.
func TestAdminCannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, adminUser)

	deleted := false
	env.backend.HandleFunc("/users/1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = true
		}
		jsonHandler(adminUser)(w, r)
	})

	rec := env.postForm(t, "/admin/users/1/delete", url.Values{})
	if deleted {
		t.Error("delete request reached the backend")
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if got := loc.Query().Get("msg"); !strings.Contains(got, "cannot delete your own account") {
		t.Errorf("msg = %q", got)
	}
}

// TestAdminTableHidesAdminsAndRefines verifies admin rows are hidden and the
// search box filters case-insensitively.
func TestAdminTableHidesAdminsAndRefines(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, adminUser)
	env.backend.HandleFunc("/users", jsonHandler(map[string]any{
		"data": []domain.User{adminUser, seekerUser, employerUser},
		"total": 3,
	}))
	env.backend.HandleFunc("/job-posts", jsonHandler(map[string]any{"data": []domain.JobPosting{}, "total": 0}))

	rec := env.get(t, "/admin?q=SARI")
	body := rec.Body.String()
	if !strings.Contains(body, "sari@x.y") {
		t.Error("matching user missing")
	}
	if strings.Contains(body, "budi@x.y") {
		t.Error("non-matching user rendered")
	}
	if strings.Contains(body, "admin@x.y") {
		t.Error("admin account rendered in user table")
	}
}

// TestUnknownPathRendersNotFound verifies the terminal not-found view.
func TestUnknownPathRendersNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/no-such-page")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page not found") {
		t.Error("not-found page missing")
	}
}

// TestJobsPaginationClamped verifies a page number past the end lands on the
// last page showing that page's items, and links preserve filters. The
// backend slices by skip/limit the way the real one does, so an out-of-range
// request genuinely comes back empty.
func TestJobsPaginationClamped(t *testing.T) {
	env := newTestEnv(t)
	all := make([]domain.JobPosting, 21)
	for i := range all {
		all[i] = domain.JobPosting{ID: int64(i + 1), Title: fmt.Sprintf("Engineer %d", i+1)}
	}
	env.backend.HandleFunc("/job-posts", func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		lo, hi := skip, skip+limit
		if lo > len(all) {
			lo = len(all)
		}
		if hi > len(all) {
			hi = len(all)
		}
		jsonHandler(map[string]any{
			"data": all[lo:hi], "total": 21, "page": skip/limit + 1, "limit": limit, "pages": 3,
		})(w, r)
	})

	rec := env.get(t, "/jobs?page=99&title=Engineer")
	body := rec.Body.String()
	if !strings.Contains(body, `<span class="current">3</span>`) {
		t.Errorf("current page marker missing; body: %s", body)
	}
	if !strings.Contains(body, "Engineer 21") {
		t.Error("last page's items not rendered for an out-of-range page")
	}
	if strings.Contains(body, "No jobs match your filters.") {
		t.Error("empty state rendered for a non-empty result set")
	}
	if !strings.Contains(body, "title=Engineer") {
		t.Error("page links dropped the title filter")
	}
}

// TestPasswordChangeForcesLogout verifies a successful password change ends
// the session and lands on login.
func TestPasswordChangeForcesLogout(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)
	env.backend.HandleFunc("/auth/verify-password", jsonHandler(map[string]bool{"verified": true}))
	env.backend.HandleFunc("/users/3", jsonHandler(seekerUser))

	rec := env.postForm(t, "/account/password", url.Values{
		"current_password": {"old-pw"},
		"new_password":     {"new-pw-123"},
		"confirm":          {"new-pw-123"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/login" {
		t.Errorf("Location = %q, want /login", loc.Path)
	}
	if _, active := env.sessions.Current(); active {
		t.Error("session survived a password change")
	}
}

// TestAccountDetailsRequireCurrentPassword verifies a wrong current password
// blocks the edit.
func TestAccountDetailsRequireCurrentPassword(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)
	env.backend.HandleFunc("/auth/verify-password", jsonHandler(map[string]bool{"verified": false}))

	updated := false
	env.backend.HandleFunc("/users/3", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			updated = true
		}
		jsonHandler(seekerUser)(w, r)
	})

	rec := env.postForm(t, "/account/details", url.Values{
		"name":             {"New Name"},
		"email":            {seekerUser.Email},
		"current_password": {"wrong"},
	})
	if updated {
		t.Error("update reached the backend despite failed verification")
	}
	if !strings.Contains(rec.Body.String(), "Current password is incorrect") {
		t.Error("verification error not rendered")
	}
}

// TestAccountDetailsMergeIntoSession verifies a successful edit updates the
// in-memory session without a re-login.
func TestAccountDetailsMergeIntoSession(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, seekerUser)
	env.backend.HandleFunc("/auth/verify-password", jsonHandler(map[string]bool{"verified": true}))
	renamed := seekerUser
	renamed.Name = "Sari Dewi"
	env.backend.HandleFunc("/users/3", jsonHandler(renamed))

	env.postForm(t, "/account/details", url.Values{
		"name":             {"Sari Dewi"},
		"email":            {seekerUser.Email},
		"current_password": {"pw"},
	})

	sess, _ := env.sessions.Current()
	if sess.User.Name != "Sari Dewi" {
		t.Errorf("session name = %q, want merged update", sess.User.Name)
	}
}

// TestRecovererRendersFallback verifies a panic inside a handler becomes the
// fallback page, not a dropped connection.
func TestRecovererRendersFallback(t *testing.T) {
	env := newTestEnv(t)
	boom := env.server.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	rec := httptest.NewRecorder()
	boom.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Error("fallback page missing")
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/goblog/internal/store"
	"github.com/olegiv/goblog/internal/testutil"
)

func newTestSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = time.Hour
	return sm
}

// sessionRequest returns a request whose context carries a loaded session.
func sessionRequest(t *testing.T, sm *scs.SessionManager, target string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return req.WithContext(ctx)
}

func TestAuth_RedirectsAnonymous(t *testing.T) {
	sm := newTestSessionManager()
	handler := Auth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := sessionRequest(t, sm, "/make_post")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d; want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q; want /login", got)
	}
}

func TestAuth_PassesAuthenticated(t *testing.T) {
	sm := newTestSessionManager()
	handler := Auth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := sessionRequest(t, sm, "/make_post")
	sm.Put(req.Context(), SessionKeyUserID, int64(1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
}

func TestLoadUser_PopulatesContext(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	sm := newTestSessionManager()

	now := time.Now()
	user, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        "a@example.com",
		PasswordHash: "hash",
		Name:         "Alice",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	var got *store.User
	handler := LoadUser(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := sessionRequest(t, sm, "/make_post")
	sm.Put(req.Context(), SessionKeyUserID, user.ID)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if got == nil || got.ID != user.ID || got.Name != "Alice" {
		t.Errorf("user in context = %+v; want %+v", got, user)
	}
}

func TestLoadUser_StaleSession(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	sm := newTestSessionManager()

	handler := LoadUser(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run for a stale session")
	}))

	req := sessionRequest(t, sm, "/make_post")
	sm.Put(req.Context(), SessionKeyUserID, int64(999))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
	if got := sm.GetInt64(req.Context(), SessionKeyUserID); got != 0 {
		t.Errorf("session user_id = %d after stale session; want 0", got)
	}
}

func TestOptionalLoadUser_IgnoresMissingUser(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	sm := newTestSessionManager()

	handler := OptionalLoadUser(sm, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) != nil {
			t.Error("expected no user in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := sessionRequest(t, sm, "/")
	sm.Put(req.Context(), SessionKeyUserID, int64(999))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
}

func TestGetUser_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if GetUser(req) != nil {
		t.Error("GetUser = non-nil for anonymous request")
	}
	if GetUserID(req) != 0 {
		t.Error("GetUserID != 0 for anonymous request")
	}
	if GetUserIDPtr(req) != nil {
		t.Error("GetUserIDPtr != nil for anonymous request")
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/view_post/7", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/view_post/7" {
		t.Errorf("request path = %q; want /view_post/7", got)
	}
}

func TestGetRequestURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search?q=go", nil)
	if got := GetRequestURL(req); got != "/search?q=go" {
		t.Errorf("GetRequestURL = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/about", nil)
	if got := GetRequestURL(req); got != "/about" {
		t.Errorf("GetRequestURL = %q", got)
	}
}

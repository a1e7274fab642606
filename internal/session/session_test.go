package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/olegiv/goblog/internal/testutil"
)

func TestNew(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	sm := New(db, true)

	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v; want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie.HttpOnly = false; want true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Cookie.SameSite = %v; want Lax", sm.Cookie.SameSite)
	}
	if sm.Cookie.Secure {
		t.Error("Cookie.Secure = true in development; want false")
	}
}

func TestNew_ProductionSecureCookie(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	sm := New(db, false)

	if !sm.Cookie.Secure {
		t.Error("Cookie.Secure = false in production; want true")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	sm := New(db, true)

	ctx, err := sm.Load(t.Context(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	sm.Put(ctx, "user_id", int64(7))

	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if token == "" {
		t.Fatal("empty session token")
	}

	// Load the same session again by token
	ctx2, err := sm.Load(t.Context(), token)
	if err != nil {
		t.Fatalf("Load(token): %v", err)
	}
	if got := sm.GetInt64(ctx2, "user_id"); got != 7 {
		t.Errorf("user_id = %d; want 7", got)
	}
}

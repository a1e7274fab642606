package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginProtection_LockoutAfterMaxAttempts(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	})

	email := "user@example.com"

	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d attempts; want lockout at 3", i+1)
		}
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked after max failed attempts")
	}
	if duration != 15*time.Minute {
		t.Errorf("lockout duration = %v; want 15m", duration)
	}

	isLocked, remaining := lp.IsAccountLocked(email)
	if !isLocked {
		t.Error("IsAccountLocked = false; want true")
	}
	if remaining <= 0 || remaining > 15*time.Minute {
		t.Errorf("remaining = %v; want (0, 15m]", remaining)
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 1,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	})

	email := "repeat@example.com"

	// First lockout uses the base duration
	if _, duration := lp.RecordFailedAttempt(email); duration != 0 {
		t.Fatalf("first attempt created a lockout of %v", duration)
	}
	if locked, duration := lp.RecordFailedAttempt(email); !locked || duration != 15*time.Minute {
		t.Fatalf("second lockout: locked=%v duration=%v; want 15m", locked, duration)
	}

	// Simulate lockout expiry, then lock again: duration doubles
	lp.attemptsMu.Lock()
	lp.failedAttempts[email].lockedUntil = time.Now().Add(-time.Minute)
	lp.attemptsMu.Unlock()

	lp.RecordFailedAttempt(email)
	if locked, duration := lp.RecordFailedAttempt(email); !locked || duration != 30*time.Minute {
		t.Errorf("locked=%v duration=%v; want 30m", locked, duration)
	}
}

func TestLoginProtection_SuccessClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(DefaultLoginProtectionConfig())

	email := "user@example.com"
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining = %d; want 3", got)
	}

	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 5 {
		t.Errorf("remaining after success = %d; want 5", got)
	}
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("account locked after successful login")
	}
}

func TestLoginProtection_WindowReset(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		AttemptWindow:     15 * time.Minute,
	})

	email := "user@example.com"
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)

	// Age the first failure past the window
	lp.attemptsMu.Lock()
	lp.failedAttempts[email].firstFailed = time.Now().Add(-16 * time.Minute)
	lp.attemptsMu.Unlock()

	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("locked after window reset; counter should have restarted")
	}
	if got := lp.GetRemainingAttempts(email); got != 2 {
		t.Errorf("remaining = %d; want 2", got)
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 0.001,
		IPBurst:     1,
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := lp.Middleware()(next)

	// GET requests are never rate limited
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET status = %d; want 200", rec.Code)
		}
	}

	// First POST consumes the burst, second is limited
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first POST status = %d; want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d; want 429", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr only", nil, "192.0.2.1:5000", "192.0.2.1:5000"},
		{"x-real-ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "192.0.2.1:5000", "203.0.113.9"},
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "192.0.2.1:5000", "203.0.113.7"},
		{"real-ip wins", map[string]string{"X-Real-IP": "203.0.113.9", "X-Forwarded-For": "203.0.113.7"}, "192.0.2.1:5000", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestLimiterCache(t *testing.T) {
	c := newLimiterCache[string](1, 1)

	l1 := c.get("a")
	if l1 != c.get("a") {
		t.Error("get should return the same limiter for the same key")
	}
	if l1 == c.get("b") {
		t.Error("different keys should get different limiters")
	}

	if c.clearIfExceeds(10) {
		t.Error("cleared below the threshold")
	}
	if !c.clearIfExceeds(1) {
		t.Error("did not clear above the threshold")
	}
	if c.clearIfExceeds(1) {
		t.Error("cleared again right after clearing")
	}
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPagesHandler_StaticPages(t *testing.T) {
	sm := testSessionManager(t)
	h := NewPagesHandler(testRenderer(t, sm))

	tests := []struct {
		route   string
		handler http.HandlerFunc
	}{
		{RouteAbout, h.About},
		{RouteContact, h.Contact},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, tt.route, nil))
			rec := httptest.NewRecorder()

			tt.handler(rec, req)

			assertStatus(t, rec.Code, http.StatusOK)
			if ct := rec.Header().Get(HeaderContentType); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q; want text/html", ct)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	Health(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q; want ok status", rec.Body.String())
	}
}

package render

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
)

func newTestRenderer(t *testing.T, sm *scs.SessionManager) *Renderer {
	t.Helper()

	templatesFS := fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{.Title}}</title>` +
				`{{template "flash" .}}` +
				`{{block "content" .}}{{end}}{{end}}`)},
		"partials/flash.html": {Data: []byte(
			`{{define "flash"}}{{if .Flash}}<div class="flash flash-{{.FlashType}}">{{.Flash}}</div>{{end}}{{end}}`)},
		"site/home.html": {Data: []byte(
			`{{define "content"}}<p>{{.Data.Greeting}}</p>{{end}}`)},
		"auth/login.html": {Data: []byte(
			`{{define "content"}}login{{end}}`)},
	}

	r, err := New(Config{TemplatesFS: templatesFS, SessionManager: sm})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func sessionRequest(t *testing.T, sm *scs.SessionManager) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return req.WithContext(ctx)
}

func TestRender_ExecutesNamedTemplate(t *testing.T) {
	sm := scs.New()
	r := newTestRenderer(t, sm)

	req := sessionRequest(t, sm)
	rec := httptest.NewRecorder()

	err := r.Render(rec, req, "site/home", TemplateData{
		Title: "Home",
		Data:  map[string]any{"Greeting": "hello"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<title>Home</title>") {
		t.Errorf("missing title: %q", body)
	}
	if !strings.Contains(body, "<p>hello</p>") {
		t.Errorf("missing content: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	sm := scs.New()
	r := newTestRenderer(t, sm)

	req := sessionRequest(t, sm)
	if err := r.Render(httptest.NewRecorder(), req, "site/nope", TemplateData{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRender_FlashIsOneShot(t *testing.T) {
	sm := scs.New()
	r := newTestRenderer(t, sm)

	req := sessionRequest(t, sm)
	r.SetFlash(req, "saved!", "success")

	rec := httptest.NewRecorder()
	if err := r.Render(rec, req, "site/home", TemplateData{Title: "Home"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `<div class="flash flash-success">saved!</div>`) {
		t.Errorf("flash not rendered: %q", rec.Body.String())
	}

	// Flash is consumed on first render
	rec = httptest.NewRecorder()
	if err := r.Render(rec, req, "site/home", TemplateData{Title: "Home"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(rec.Body.String(), "saved!") {
		t.Error("flash rendered twice")
	}
}

func TestRender_FlashTypeDefaultsToInfo(t *testing.T) {
	sm := scs.New()
	r := newTestRenderer(t, sm)

	req := sessionRequest(t, sm)
	sm.Put(req.Context(), "flash", "heads up")

	rec := httptest.NewRecorder()
	if err := r.Render(rec, req, "site/home", TemplateData{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "flash-info") {
		t.Errorf("flash type did not default to info: %q", rec.Body.String())
	}
}

func TestTemplateFuncs(t *testing.T) {
	r := &Renderer{}
	funcs := r.templateFuncs()

	formatDate := funcs["formatDate"].(func(time.Time) string)
	ts := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC)
	if got := formatDate(ts); got != "Mar 5, 2026" {
		t.Errorf("formatDate = %q", got)
	}

	truncate := funcs["truncate"].(func(string, int) string)
	if got := truncate("hello world", 5); got != "hello..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Errorf("truncate short = %q", got)
	}
}

func TestSanitizeHTML_StripsScripts(t *testing.T) {
	r := &Renderer{}
	sanitize := r.templateFuncs()["sanitizeHTML"].(func(string) template.HTML)

	got := string(sanitize(`<p>ok</p><script>alert(1)</script>`))

	if strings.Contains(got, "<script>") {
		t.Errorf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<p>ok</p>") {
		t.Errorf("safe markup stripped: %q", got)
	}
}

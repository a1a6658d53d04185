package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Its-donkey/eventpage/internal/config"
	"github.com/Its-donkey/eventpage/internal/ui/countdown"
	"github.com/Its-donkey/eventpage/internal/ui/markup"
	"github.com/Its-donkey/eventpage/logging"
)

var testRemaining = 24*time.Hour + 2*time.Hour + 3*time.Minute + 4*time.Second + 50*time.Millisecond

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"styles.css": "body{}",
		"main.wasm":  "\x00asm",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestServer(t *testing.T, mutate func(*Options)) (*server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	opts := Options{
		AssetsDir: writeAssets(t),
		Event:     config.DefaultConfig().Event,
		Logger:    logging.New("test", logging.DEBUG, &logs),
		Now:       func() time.Time { return countdown.DefaultEnd.Add(-testRemaining) },
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv, err := newServer(opts)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return srv, &logs
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlePageRendersPrerenderedCountdown(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rr := get(t, srv.routes(), "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rr.Body.String()))
	if err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if title := doc.Find("title").Text(); title != "Launch night" {
		t.Fatalf("unexpected title %q", title)
	}
	var got []string
	for _, sel := range countdown.SlotSelectors {
		got = append(got, doc.Find(".counter-text "+sel).Text())
	}
	if strings.Join(got, ":") != "01:02:03:04:05" {
		t.Fatalf("expected pre-rendered 01:02:03:04:05, got %v", got)
	}
	if end, _ := doc.Find(".counter").Attr("data-end"); end != "2026-02-25T10:00:00+11:00" {
		t.Fatalf("unexpected data-end %q", end)
	}
	if n := doc.Find("[data-popup-step]").Length(); n != 4 {
		t.Fatalf("expected 4 steps, got %d", n)
	}
	if level, _ := doc.Find("html").Attr("data-log-level"); level != "WARN" {
		t.Fatalf("expected WARN console level, got %q", level)
	}
	if strings.Contains(rr.Body.String(), "/dev/reload") {
		t.Fatalf("reload script must only appear in dev mode")
	}
}

func TestRenderedPagePassesMarkupCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rr := get(t, srv.routes(), "/")
	rep, err := markup.Check(rr.Body)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !rep.OK() || len(rep.Warnings()) != 0 {
		t.Fatalf("expected a clean page, got %v", rep.Findings)
	}
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.routes()
	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/healthz", http.StatusOK, "text/plain; charset=utf-8"},
		{"/favicon.ico", http.StatusNoContent, ""},
		{"/main.wasm", http.StatusOK, "application/wasm"},
		{"/styles.css", http.StatusOK, "text/css; charset=utf-8"},
		{"/wasm_exec.js", http.StatusNotFound, ""},
		{"/nope", http.StatusNotFound, ""},
		{"/dev/reload", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rr := get(t, h, tt.path)
		if rr.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.path, tt.status, rr.Code)
		}
		if tt.contentType != "" && rr.Header().Get("Content-Type") != tt.contentType {
			t.Fatalf("%s: unexpected content type %q", tt.path, rr.Header().Get("Content-Type"))
		}
	}
}

func TestPageRejectsPost(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestResponsesCarryHeadersAndAreLogged(t *testing.T) {
	srv, logs := newTestServer(t, nil)
	rr := get(t, srv.routes(), "/styles.css")
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers: %v", rr.Header())
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "'wasm-unsafe-eval'") {
		t.Fatalf("CSP must allow WebAssembly compilation")
	}
	id := rr.Header().Get(logging.RequestIDHeader)
	if id == "" {
		t.Fatalf("expected request id header")
	}
	if !strings.Contains(logs.String(), id) || !strings.Contains(logs.String(), `"component":"http"`) {
		t.Fatalf("expected http log entry with request id, got %s", logs.String())
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) {
		o.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 2, MaxClients: 10}
	})
	h := srv.routes()
	for i := 0; i < 2; i++ {
		if rr := get(t, h, "/healthz"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	rr := get(t, h, "/healthz")
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
}

func TestTemplatesDirOverrideAndReload(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, "page.tmpl"), []byte(body), 0o644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}
	write(`{{define "page"}}<html><body><h1>{{.Title}} v1</h1></body></html>{{end}}`)
	srv, _ := newTestServer(t, func(o *Options) { o.TemplatesDir = dir })
	h := srv.routes()

	if body := get(t, h, "/").Body.String(); !strings.Contains(body, "Launch night v1") {
		t.Fatalf("expected override template, got %s", body)
	}

	write(`{{define "page"}}<html><body><h1>{{.Title}} v2</h1></body></html>{{end}}`)
	if err := srv.onTemplateChange("page.tmpl"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if body := get(t, h, "/").Body.String(); !strings.Contains(body, "Launch night v2") {
		t.Fatalf("expected reloaded template, got %s", body)
	}

	write(`{{define "page"}}{{.Broken`)
	if err := srv.onTemplateChange("page.tmpl"); err == nil {
		t.Fatalf("expected parse error")
	}
	if body := get(t, h, "/").Body.String(); !strings.Contains(body, "Launch night v2") {
		t.Fatalf("a failed reload must keep the previous template")
	}
}

func TestEmptyTemplatesDirUsesEmbedded(t *testing.T) {
	srv, _ := newTestServer(t, func(o *Options) { o.TemplatesDir = t.TempDir() })
	if srv.templates.Source() != "embedded" {
		t.Fatalf("expected embedded templates, got %s", srv.templates.Source())
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	ready := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Options{
			Listen:    "127.0.0.1:0",
			AssetsDir: writeAssets(t),
			Event:     config.DefaultConfig().Event,
			RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
			Ready:     ready,
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-errCh:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatalf("server did not stop")
	}
}

package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Its-donkey/eventpage/internal/config"
)

const goodPage = `<html><body>
<nav class="navbar"><a class="join-button" href="#">Join</a></nav>
<div class="counter" data-end="2026-02-25T10:00:00+11:00"><div class="counter-text">
<span class="days"><span class="value"></span></span>
<span class="hours"><span class="value"></span></span>
<span class="minutes"><span class="value"></span></span>
<span class="seconds"><span class="value"></span></span>
<span class="centis"><span class="value"></span></span>
</div></div>
<div id="popupOverlay">
<div data-popup-step="1"><button class="next-button">n</button></div>
<div data-popup-step="2"><button class="next-button">n</button></div>
<div data-popup-step="3"><button class="next-button">n</button></div>
<div data-popup-step="4"><button class="next-button">n</button></div>
</div></body></html>`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCheckFileAndURL(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.html", goodPage)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goodPage))
	}))
	defer ts.Close()

	out, err := run(t, "check", good, ts.URL)
	if err != nil {
		t.Fatalf("expected success, got %v\n%s", err, out)
	}
	if strings.Count(out, ": ok (1 counters, 4 steps") != 2 {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	bad := writeFile(t, t.TempDir(), "bad.html", strings.Replace(goodPage, `id="popupOverlay"`, "", 1))
	out, err := run(t, "check", bad)
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "error: popup: no #popupOverlay element") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCheckRequiresArgs(t *testing.T) {
	if _, err := run(t, "check"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestCheckMissingFile(t *testing.T) {
	if _, err := run(t, "check", filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventpage.yml")
	out, err := run(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "wrote "+path) {
		t.Fatalf("unexpected output %q", out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Event.Title != config.DefaultConfig().Event.Title {
		t.Fatalf("unexpected title %q", cfg.Event.Title)
	}

	if _, err := run(t, "--config", path, "config", "init"); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := run(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Fatalf("force overwrite: %v", err)
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "eventpage.yml", "log:\n  level: LOUD\n")
	_, err := run(t, "--config", path, "serve")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestServeRejectsBadListenFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	_, err := run(t, "--config", path, "serve", "--listen", "nonsense")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || out != "eventpage dev\n" {
		t.Fatalf("unexpected version output %q %v", out, err)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Dir = t.TempDir()
	var out bytes.Buffer
	logger, closeLog, err := newLogger(cfg, true, &out)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("general", "hello", nil)
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Log.Dir, "eventpage.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) || !strings.Contains(out.String(), `"level":"DEBUG"`) {
		t.Fatalf("expected debug entry in both outputs")
	}
}

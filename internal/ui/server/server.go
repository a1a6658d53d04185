// Package server serves the event landing page and its WebAssembly bundle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Its-donkey/eventpage/internal/config"
	"github.com/Its-donkey/eventpage/logging"
)

const shutdownTimeout = 5 * time.Second

// Options configures the page server.
type Options struct {
	Listen       string
	TemplatesDir string
	AssetsDir    string
	Dev          bool
	RateLimit    config.RateLimitConfig
	Event        config.EventConfig
	Logger       *logging.Logger
	// Now overrides the clock used for the countdown pre-render.
	Now func() time.Time
	// Ready, when set, receives the bound address once the listener is up.
	Ready chan<- string
}

// FromConfig maps a loaded configuration onto Options.
func FromConfig(cfg *config.Config, logger *logging.Logger) Options {
	return Options{
		Listen:       cfg.Server.Listen,
		TemplatesDir: cfg.Server.Templates,
		AssetsDir:    cfg.Server.Assets,
		Dev:          cfg.Server.Dev,
		RateLimit:    cfg.Server.RateLimit,
		Event:        cfg.Event,
		Logger:       logger,
	}
}

type server struct {
	assetsDir string
	dev       bool
	event     config.EventConfig
	templates *templateSet
	logger    *logging.Logger
	now       func() time.Time
	hub       *reloadHub
	limiter   *rateLimiter
}

func newServer(opts Options) (*server, error) {
	if opts.AssetsDir == "" {
		opts.AssetsDir = "ui"
	}
	assetsPath, err := filepath.Abs(opts.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve assets dir: %w", err)
	}
	templatesDir := opts.TemplatesDir
	if templatesDir != "" {
		if templatesDir, err = filepath.Abs(templatesDir); err != nil {
			return nil, fmt.Errorf("resolve templates dir: %w", err)
		}
	}
	templates, err := newTemplateSet(templatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &server{
		assetsDir: assetsPath,
		dev:       opts.Dev,
		event:     opts.Event,
		templates: templates,
		logger:    opts.Logger,
		now:       now,
	}
	if s.dev {
		s.hub = newReloadHub(opts.Logger.Named("reload"))
	}
	if opts.RateLimit.RPS > 0 {
		s.limiter = newRateLimiter(opts.RateLimit.RPS, opts.RateLimit.Burst, opts.RateLimit.MaxClients, opts.Logger.Named("ratelimit"))
	}
	return s, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.Handle("/main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	mux.Handle("/wasm_exec.js", s.assetHandler("wasm_exec.js", "text/javascript; charset=utf-8"))
	mux.Handle("/styles.css", s.assetHandler("styles.css", "text/css; charset=utf-8"))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if s.hub != nil {
		mux.Handle("/dev/reload", s.hub)
	}

	var handler http.Handler = mux
	handler = securityHeaders(handler)
	if s.limiter != nil {
		handler = s.limiter.middleware(handler)
	}
	return logging.NewHTTPLogger(s.logger.Named("http"), "/healthz", "/dev/reload").Middleware(handler)
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.assetsDir, name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		if s.dev {
			w.Header().Set("Cache-Control", "no-cache")
		}
		http.ServeFile(w, r, path)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// onTemplateChange reloads templates and tells dev clients to refresh.
func (s *server) onTemplateChange(name string) error {
	if err := s.templates.reload(); err != nil {
		return err
	}
	s.logger.Info("watch", "templates reloaded", map[string]any{"file": name, "source": s.templates.Source()})
	if s.hub != nil {
		s.hub.Broadcast(name)
	}
	return nil
}

// forwardLogs sends warnings and errors logged through the server logger, and
// the children it names from now on, to dev clients. The returned channel
// closes once ctx is cancelled and the subscription is gone.
func (s *server) forwardLogs(ctx context.Context) <-chan struct{} {
	entries := make(chan logging.Entry, 32)
	unsubscribe := s.logger.Subscribe(entries)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer unsubscribe()
		for {
			select {
			case entry := <-entries:
				if level, err := logging.ParseLevel(entry.Level); err == nil && level >= logging.WARN {
					s.hub.Notify(entry)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// Run serves the page until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, opts Options) error {
	srv, err := newServer(opts)
	if err != nil {
		return err
	}
	logger := opts.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if srv.limiter != nil {
		sweeperDone := srv.limiter.run(ctx)
		defer func() { <-sweeperDone }()
		defer cancel()
	}

	if srv.hub != nil {
		forwardDone := srv.forwardLogs(ctx)
		defer func() { <-forwardDone }()
		defer cancel()
	}

	if srv.dev && opts.TemplatesDir != "" {
		dir, err := filepath.Abs(opts.TemplatesDir)
		if err != nil {
			return fmt.Errorf("resolve templates dir: %w", err)
		}
		watcher, err := newTemplateWatcher(dir, srv.onTemplateChange, logger.Named("watch"))
		if err != nil {
			return err
		}
		watcher.Start()
		defer watcher.Stop()
		logger.Info("watch", "watching templates", map[string]any{"dir": dir})
	}
	if srv.hub != nil {
		defer srv.hub.CloseAll()
	}

	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Listen, err)
	}
	httpServer := &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	addr := ln.Addr().String()
	logger.Info("general", "serving event page", map[string]any{
		"url":       "http://" + addr,
		"dev":       srv.dev,
		"templates": srv.templates.Source(),
	})
	if opts.Ready != nil {
		opts.Ready <- addr
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if srv.hub != nil {
			srv.hub.CloseAll()
		}
		_ = httpServer.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

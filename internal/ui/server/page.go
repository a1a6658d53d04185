package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Its-donkey/eventpage/internal/config"
	"github.com/Its-donkey/eventpage/internal/ui/countdown"
	"github.com/Its-donkey/eventpage/internal/ui/dom/htmldom"
)

type pageData struct {
	Title    string
	Ends     string
	Steps    []config.StepConfig
	Dev      bool
	LogLevel string
	Year     int
}

func (s *server) pageData(now time.Time) pageData {
	logLevel := "WARN"
	if s.dev {
		logLevel = "DEBUG"
	}
	return pageData{
		Title:    s.event.Title,
		Ends:     s.event.EndTime().Format(time.RFC3339),
		Steps:    s.event.Steps,
		Dev:      s.dev,
		LogLevel: logLevel,
		Year:     now.Year(),
	}
}

// renderPage executes the page template, then writes the countdown values for
// now into the markup so the first paint is already correct.
func (s *server) renderPage(w io.Writer, now time.Time) error {
	var buf bytes.Buffer
	if err := s.templates.execute(&buf, s.pageData(now)); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	doc, err := htmldom.Parse(&buf)
	if err != nil {
		return err
	}
	countdown.Prerender(doc, now, countdown.Options{Logger: s.logger.Named("prerender")})
	return doc.Render(w)
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var buf bytes.Buffer
	if err := s.renderPage(&buf, s.now()); err != nil {
		s.logger.Error("render", "render page", err, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

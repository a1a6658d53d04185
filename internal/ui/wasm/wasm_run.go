//go:build js && wasm

// Package wasm is the browser entry point of the landing page.
package wasm

import (
	"github.com/Its-donkey/eventpage/internal/ui/dom/jsdom"
	"github.com/Its-donkey/eventpage/internal/ui/page"
	"github.com/Its-donkey/eventpage/logging"
)

// LogLevelAttr on the root element selects the console log level.
const LogLevelAttr = "data-log-level"

// RunApp bootstraps the page components and blocks forever.
func RunApp() {
	done := make(chan struct{})
	doc, win, sched := jsdom.Global()

	logger := logging.New("page", consoleLevel(doc), logging.NewConsoleWriter())
	page.Initialize(doc, win, sched, logger)
	<-done
}

// consoleLevel reads the level from <html>. Anything unset or unknown keeps
// the console quiet below WARN.
func consoleLevel(doc *jsdom.Document) logging.Level {
	root, ok := doc.QuerySelector("html")
	if !ok {
		return logging.WARN
	}
	raw, ok := root.Attr(LogLevelAttr)
	if !ok {
		return logging.WARN
	}
	level, err := logging.ParseLevel(raw)
	if err != nil || raw == "" {
		return logging.WARN
	}
	return level
}

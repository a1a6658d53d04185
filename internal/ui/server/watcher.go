package server

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Its-donkey/eventpage/logging"
)

// templateWatcher calls onChange when a *.tmpl file in dir is written or
// created.
type templateWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	onChange func(name string) error
	logger   *logging.Logger
	done     chan struct{}
	stopped  chan struct{}
	started  bool
}

func newTemplateWatcher(dir string, onChange func(string) error, logger *logging.Logger) (*templateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &templateWatcher{
		watcher:  fsw,
		dir:      dir,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (w *templateWatcher) Start() {
	w.started = true
	go func() {
		defer close(w.stopped)
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Ext(event.Name) != ".tmpl" {
					continue
				}
				name := filepath.Base(event.Name)
				w.logger.Debug("watch", "template changed", map[string]any{"file": name, "dir": w.dir})
				if err := w.onChange(name); err != nil {
					w.logger.Error("watch", "template reload failed", err, map[string]any{"file": name, "dir": w.dir})
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("watch", "watcher error", err, map[string]any{"dir": w.dir})
			case <-w.done:
				return
			}
		}
	}()
}

// Stop ends the watch loop and waits for it to exit.
func (w *templateWatcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	if w.started {
		<-w.stopped
	}
	return err
}

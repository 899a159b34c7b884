// Package watch submits files dropped into an inbox directory for
// ingestion.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/clusterscope/internal/parser"
)

// SubmitFunc hands a settled inbox file to the pipeline.
type SubmitFunc func(path string) error

// Watcher waits for files in Dir to stop changing for Settle, then submits
// them once.
type Watcher struct {
	Dir    string
	Settle time.Duration
	submit SubmitFunc
	log    *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(dir string, settle time.Duration, submit SubmitFunc, log *slog.Logger) *Watcher {
	if settle <= 0 {
		settle = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		Dir:     dir,
		Settle:  settle,
		submit:  submit,
		log:     log,
		pending: make(map[string]*time.Timer),
	}
}

// Run watches until ctx is done. Files already in the directory are
// submitted first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}

	if err := w.scanExisting(); err != nil {
		w.log.Warn("inbox scan failed", "dir", w.Dir, "error", err)
	}
	w.log.Info("watching inbox", "dir", w.Dir)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(event); ok {
				w.schedule(path)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("inbox watcher error", "error", err)
		}
	}
}

// handleEvent returns the path to (re)schedule for an event, if any.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !accept(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) scanExisting() error {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(w.Dir, e.Name())
		if e.IsDir() || !accept(path) {
			continue
		}
		w.schedule(path)
	}
	return nil
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(w.Settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.Settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if err := w.submit(path); err != nil {
			w.log.Error("inbox submit failed", "path", path, "error", err)
			return
		}
		w.log.Info("inbox file submitted", "path", path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func accept(path string) bool {
	return !isHidden(path) && parser.IsSupportedExtension(path)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Package watch reformats files when they are written.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iw2rmb/reflow/buffer"
	"github.com/iw2rmb/reflow/format"
	"github.com/iw2rmb/reflow/internal/config"
	"github.com/iw2rmb/reflow/internal/logfields"
)

const DefaultDebounce = 200 * time.Millisecond

// Handler is run for a path once writes to it have settled.
type Handler func(ctx context.Context, path string) error

type Options struct {
	// Debounce is how long a path must stay quiet before its handler runs.
	Debounce time.Duration
	// Match selects the files of watched directories. Nil matches all.
	Match  func(path string) bool
	Logger *slog.Logger
}

// Watcher runs a Handler for written files. Handlers run one at a time on the
// goroutine calling Run.
type Watcher struct {
	fw      *fsnotify.Watcher
	handler Handler
	opt     Options

	files map[string]bool // explicitly added files
	dirs  map[string]bool // explicitly added directories
}

func New(handler Handler, opt Options) (*Watcher, error) {
	if opt.Debounce <= 0 {
		opt.Debounce = DefaultDebounce
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		fw:      fw,
		handler: handler,
		opt:     opt,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}, nil
}

// Add watches a file or every matching file of a directory. Files are watched
// through their directory so that editors replacing the file on save are
// still seen.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) Close() error { return w.fw.Close() }

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]time.Time)
	timer := time.NewTimer(w.opt.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.wanted(ev) {
				continue
			}
			w.opt.Logger.Debug("file changed", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			pending[ev.Name] = time.Now().Add(w.opt.Debounce)
			timer.Reset(w.opt.Debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.opt.Logger.Error("watcher error", logfields.Error(err))
		case <-timer.C:
			if next, ok := w.runDue(ctx, pending); ok {
				timer.Reset(next)
			}
		}
	}
}

// runDue runs the handlers of settled paths and returns the wait until the
// next one settles.
func (w *Watcher) runDue(ctx context.Context, pending map[string]time.Time) (time.Duration, bool) {
	now := time.Now()
	var next time.Duration
	for path, due := range pending {
		if wait := due.Sub(now); wait > 0 {
			if next == 0 || wait < next {
				next = wait
			}
			continue
		}
		delete(pending, path)
		if err := w.handler(ctx, path); err != nil {
			w.opt.Logger.Warn("handler failed", logfields.Path(path), logfields.Error(err))
		}
	}
	return next, next > 0
}

func (w *Watcher) wanted(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if w.files[ev.Name] {
		return true
	}
	if !w.dirs[filepath.Dir(ev.Name)] {
		return false
	}
	if info, err := os.Stat(ev.Name); err != nil || !info.Mode().IsRegular() {
		return false
	}
	return w.opt.Match == nil || w.opt.Match(ev.Name)
}

// FormatOnSave returns a Handler formatting each file with f.
func FormatOnSave(f *format.Formatter, eol config.EOL, log *slog.Logger) Handler {
	return func(ctx context.Context, path string) error {
		changed, err := FormatFile(ctx, f, path, eol)
		if err != nil {
			return err
		}
		if changed {
			log.Info("formatted", logfields.Path(path), logfields.Engine(f.Engine().Name()))
		}
		return nil
	}
}

// FormatFile formats the file at path in place and reports whether it
// changed. An unchanged file is not rewritten, so formatting on save settles
// after one round.
func FormatFile(ctx context.Context, f *format.Formatter, path string, eol config.EOL) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	src := string(data)
	b := buffer.New(src, buffer.Options{EOLMarker: eol.Marker(src)})
	if err := f.FormatDocument(ctx, b); err != nil {
		return false, err
	}
	out := b.Text()
	if out == src {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

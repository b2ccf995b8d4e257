// Package watch reports changes of a fixed set of script files. It watches
// their directories, so editors that save through a rename are seen too.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 100 * time.Millisecond

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration
	// OnError receives watcher errors; watching continues after them.
	OnError func(error)
}

// Watcher tracks a set of files.
type Watcher struct {
	fsw     *fsnotify.Watcher
	opts    Options
	order   []string          // исходные пути в порядке аргументов
	tracked map[string]string // абсолютный путь -> исходный
}

// New starts watching the directories of paths. Changes are delivered by
// Run; events that arrive before Run are buffered by fsnotify.
func New(paths []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, opts: opts, tracked: make(map[string]string, len(paths))}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		if _, dup := w.tracked[abs]; dup {
			continue
		}
		w.tracked[abs] = p
		w.order = append(w.order, p)
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
	}
	return w, nil
}

// Run blocks until ctx is done and calls onChange with the changed files,
// in the order they were given to New, after each quiet period. onChange
// runs on the Run goroutine; events during it are collected for the next
// batch. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func([]string)) error {
	defer w.fsw.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			orig, ok := w.match(ev)
			if !ok {
				continue
			}
			pending[orig] = true
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}

		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for _, p := range w.order {
				if pending[p] {
					batch = append(batch, p)
				}
			}
			clear(pending)
			if len(batch) > 0 {
				onChange(batch)
			}
		}
	}
}

func (w *Watcher) match(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return "", false
	}
	orig, ok := w.tracked[abs]
	return orig, ok
}

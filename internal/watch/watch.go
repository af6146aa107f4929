// Package watch reports files created or written in a directory so they can
// be ingested automatically.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"
)

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir      string
	exts     map[string]struct{}
	debounce time.Duration
	logger   arbor.ILogger
}

// New creates a watcher for dir. Only files whose extension is in exts are
// reported; an empty exts reports every file. Events for the same path
// within debounce of each other are reported once.
func New(dir string, exts []string, debounce time.Duration, logger arbor.ILogger) *Watcher {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return &Watcher{dir: dir, exts: set, debounce: debounce, logger: logger}
}

// Watch starts watching and returns a channel of settled file paths. The
// channel is closed when ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", w.dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	out := make(chan string)
	go w.loop(ctx, fw, out)
	w.logger.Info().Str("dir", w.dir).Msg("Watching directory")
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- string) {
	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		settled = make(chan string)
		done    = make(chan struct{})
	)
	defer func() {
		close(done)
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
		fw.Close()
		close(out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			mu.Lock()
			if t, ok := pending[ev.Name]; ok {
				t.Reset(w.debounce)
			} else {
				name := ev.Name
				pending[name] = time.AfterFunc(w.debounce, func() { deliver(name, settled, done) })
			}
			mu.Unlock()
		case name := <-settled:
			mu.Lock()
			_, ok := pending[name]
			delete(pending, name)
			mu.Unlock()
			if !ok {
				continue
			}
			select {
			case out <- name:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("dir", w.dir).Msg("Watcher error")
		}
	}
}

// deliver hands a settled path to the loop, giving up once the loop has
// exited.
func deliver(name string, settled chan<- string, done <-chan struct{}) {
	select {
	case settled <- name:
	case <-done:
	}
}

// relevant reports whether ev is a create or write of a regular, visible
// file with an accepted extension.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.exts) > 0 {
		if _, ok := w.exts[strings.ToLower(filepath.Ext(base))]; !ok {
			return false
		}
	}
	info, err := os.Stat(ev.Name)
	return err == nil && info.Mode().IsRegular()
}

// Package watch reloads an instance file whenever it changes on disk.
package watch

import (
	"bytes"
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kilianp07/bnbsched/core/scheduler"
	"github.com/kilianp07/bnbsched/infra/logger"
	"github.com/kilianp07/bnbsched/internal/eventbus"
)

const (
	DefaultDebounce = 250 * time.Millisecond

	restartBackoffBase = 250 * time.Millisecond
	restartBackoffMax  = 5 * time.Second
)

// Change is emitted after the watched file settled. Err is set when the new
// content could not be decoded; Instance is then the zero value.
type Change struct {
	Path     string
	Instance scheduler.Instance
	Err      error
}

// Watcher monitors one instance file.
type Watcher struct {
	path     string
	debounce time.Duration
	bus      *eventbus.Bus[Change]
	log      logger.Logger

	mu       sync.Mutex
	timer    *time.Timer
	lastHash uint64
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reloaded.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(w *Watcher) { w.log = l } }

// New creates a Watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		bus:      eventbus.New[Change](),
		log:      logger.NopLogger{},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Changes subscribes to reload events.
func (w *Watcher) Changes() <-chan Change { return w.bus.Subscribe(4) }

// Unsubscribe releases a channel returned by Changes.
func (w *Watcher) Unsubscribe(ch <-chan Change) { w.bus.Unsubscribe(ch) }

// Run watches the file's directory until ctx is done. A broken fsnotify
// watcher is recreated with exponential backoff. Run closes every
// subscription when it returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.bus.Close()
	defer w.stopTimer()

	dir := filepath.Dir(w.path)
	backoff := restartBackoffBase
	for {
		fw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fw.Add(dir); err != nil {
				_ = fw.Close()
			}
		}
		if err == nil {
			backoff = restartBackoffBase
			w.log.Debugf("watching %s", w.path)
			w.loop(ctx, fw)
			_ = fw.Close()
		} else {
			w.log.Warnf("watch %s: %v", dir, err)
		}
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, restartBackoffMax)
	}
}

// loop returns when ctx is done or the watcher breaks.
func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	file := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == file && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err == nil {
				continue
			}
			if strings.Contains(strings.ToLower(err.Error()), "overflow") {
				w.log.Warnf("watch overflow, forcing reload: %v", err)
				w.schedule()
				continue
			}
			w.log.Warnf("watch error: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warnf("read %s: %v", w.path, err)
		return
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	sum := h.Sum64()

	w.mu.Lock()
	unchanged := sum == w.lastHash
	w.lastHash = sum
	w.mu.Unlock()
	if unchanged {
		w.log.Debugf("%s unchanged, skipping", w.path)
		return
	}

	ext := filepath.Ext(w.path)
	inst, err := scheduler.DecodeInstance(bytes.NewReader(data), strings.TrimPrefix(ext, "."))
	if err == nil && inst.Name == "" {
		inst.Name = strings.TrimSuffix(filepath.Base(w.path), ext)
	}
	w.bus.Publish(Change{Path: w.path, Instance: inst, Err: err})
}

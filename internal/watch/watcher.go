// Package watch processes manifests as they are dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

// DefaultSettle is how long a manifest must stay unchanged before it is handled.
const DefaultSettle = 500 * time.Millisecond

// Handler processes one manifest file.
type Handler func(ctx context.Context, path string) error

// Watcher invokes a Handler for every *.csv file created or rewritten in a
// directory. Subdirectories are not watched.
type Watcher struct {
	dir     string
	handler Handler
	settle  time.Duration
	logger  *logrus.Entry

	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	pending  map[string]*pendingManifest
	ready    chan string
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for dir. A non-positive settle uses DefaultSettle.
func New(dir string, settle time.Duration, handler Handler) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:      dir,
		handler:  handler,
		settle:   settle,
		logger:   logging.NewLogger("speechprep.watch"),
		pending:  make(map[string]*pendingManifest),
		ready:    make(chan string),
		stopChan: make(chan struct{}),
	}
}

// Start begins watching. Handlers run sequentially on the watcher goroutine
// and receive ctx.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()

	w.logger.WithField("dir", w.dir).Info("Watching for manifests")
	return nil
}

// Stop ends watching and waits for an in-flight handler to return.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()

		w.mu.Lock()
		for path, p := range w.pending {
			p.timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if w.fsw != nil {
			w.fsw.Close()
		}
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if isManifest(event.Name) && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(event.Name)
			}

		case path := <-w.ready:
			w.handle(ctx, path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("File watcher error")

		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		}
	}
}

// pendingManifest is a manifest waiting out its settle period. gen changes
// on every event so a timer that already fired can tell it is stale.
type pendingManifest struct {
	timer *time.Timer
	gen   uint64
}

// schedule (re)starts the settle timer for path so a file being written in
// several chunks is handled once.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[path]
	if !ok {
		p = &pendingManifest{}
		w.pending[path] = p
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(w.settle, func() { w.fire(path, gen) })
}

// fire hands path to the loop unless a later event superseded generation gen.
func (w *Watcher) fire(path string, gen uint64) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || p.gen != gen {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	select {
	case w.ready <- path:
	case <-w.stopChan:
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	logger := w.logger.WithField("manifest", path)
	logger.Info("Processing manifest")
	if err := w.handler(ctx, path); err != nil {
		logger.WithError(err).Error("Manifest processing failed")
	}
}

func isManifest(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".csv")
}

// OutputDir is the directory a manifest's outputs are written to.
func OutputDir(root, manifest string) string {
	base := filepath.Base(manifest)
	return filepath.Join(root, strings.TrimSuffix(base, filepath.Ext(base)))
}

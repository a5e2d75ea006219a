package graphics

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher collects changed .wgsl files in a directory. Events arrive on
// the watcher goroutine; the render loop drains them with Poll.
type ShaderWatcher struct {
	fsnotify *fsnotify.Watcher
	log      Logger

	mu      sync.Mutex
	changed map[string]struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func WatchShaders(dir string, log Logger) (*ShaderWatcher, error) {
	if log == nil {
		log = nopLogger{}
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}
	w := &ShaderWatcher{
		fsnotify: fsWatch,
		log:      log,
		changed:  map[string]struct{}{},
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.start()
	return w, nil
}

func (w *ShaderWatcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Ext(e.Name) != ".wgsl" {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.changed[e.Name] = struct{}{}
				w.mu.Unlock()
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.log.Warnf("shader watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

// Poll returns the files changed since the last call, sorted. It never
// blocks.
func (w *ShaderWatcher) Poll() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.changed))
	for name := range w.changed {
		out = append(out, name)
	}
	w.changed = map[string]struct{}{}
	sort.Strings(out)
	return out
}

func (w *ShaderWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		<-w.stopped
		err = w.fsnotify.Close()
	})
	return err
}

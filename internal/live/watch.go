package live

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/ebb/internal/harness"
)

// debounce is how long a file must stay quiet before its change is reported.
const debounce = 100 * time.Millisecond

// Watcher reports changes to scenario files.
//
// It watches the directories containing the given files, since editors often
// replace a file by renaming over it. Events carries the cleaned path of each
// changed file once writes to it have settled for the debounce period. Both
// channels are closed after Close returns.
type Watcher struct {
	watcher *fsnotify.Watcher
	targets map[string]bool
	Events  chan string
	Errors  chan error
	ready   chan string
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches the given scenario files for changes.
func NewWatcher(files ...string) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watcher: no files to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		targets: targets,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		ready:   make(chan string),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Errors)
	defer close(w.Events)

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.targets[name] || !harness.IsScenarioFile(name) {
				continue
			}
			if t, ok := timers[name]; ok {
				t.Reset(debounce)
				continue
			}
			timers[name] = time.AfterFunc(debounce, func() { w.settle(name) })
		case name := <-w.ready:
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

// settle runs on a timer goroutine once name has been quiet for debounce.
func (w *Watcher) settle(name string) {
	select {
	case w.ready <- name:
	case <-w.closeCh:
	}
}

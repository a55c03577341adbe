// Package watcher signals the dev orchestrator when route or island
// sources change on disk. Rapid bursts of filesystem events (editor
// saves, git checkouts) are debounced into a single signal.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atollweb/atoll/pkg/errors"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/manifest"
)

// Watcher wraps fsnotify with recursive directory registration and
// debouncing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	events   chan struct{}
	debounce time.Duration

	// fire is the debounce timer's delivery channel. It is never closed,
	// so a timer firing after Close cannot panic; loop forwards it to
	// events while running.
	fire chan struct{}

	timerMu sync.Mutex
	timer   *time.Timer

	closeOnce sync.Once
}

// New watches the given roots recursively. Roots that do not exist yet
// are skipped; directories created later under a watched root are picked
// up automatically.
func New(debounce time.Duration, roots ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot create filesystem watcher")
	}

	w := &Watcher{
		fsw:      fsw,
		events:   make(chan struct{}, 1),
		fire:     make(chan struct{}, 1),
		debounce: debounce,
	}

	logger := logging.GetLogger("watcher")
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		logger.Debug().Str("root", root).Msg("Watching directory")
	}

	go w.loop()
	return w, nil
}

// Events delivers one signal per settled burst of changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

// addRecursive registers root and every directory below it.
func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, errors.ErrFileAccess, "cannot stat watch root").
			WithDetail("path", root)
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	logger := logging.GetLogger("watcher")

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				w.shutdown()
				return
			}
			if event.Has(fsnotify.Chmod) {
				continue
			}

			// New directories need registering before their contents
			// produce events.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil {
						logger.Warn().Err(err).Str("path", event.Name).Msg("Cannot watch new directory")
					}
					w.bump()
					continue
				}
			}

			if !manifest.IsSourceFile(event.Name) {
				continue
			}

			logger.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("Source change")
			w.bump()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.shutdown()
				return
			}
			logger.Warn().Err(err).Msg("Watcher error")

		case <-w.fire:
			select {
			case w.events <- struct{}{}:
			default:
			}
		}
	}
}

// shutdown disarms the debounce timer and closes the event channel. Only
// loop calls it; a timer that already fired parks its signal in fire,
// which nothing reads after this.
func (w *Watcher) shutdown() {
	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()
	close(w.events)
}

// bump (re)starts the debounce timer; when it fires, one signal is
// delivered unless the previous one is still pending.
func (w *Watcher) bump() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// configWatcher calls back whenever the configuration file is written.
type configWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// watchConfig watches the directory holding path, since editors often replace
// a file rather than write it in place. onChange runs on the watcher goroutine.
func watchConfig(path string, log *zap.Logger, onChange func()) (*configWatcher, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	cw := &configWatcher{w: w, done: make(chan struct{})}
	go cw.loop(target, log, onChange)
	return cw, nil
}

func (cw *configWatcher) loop(target string, log *zap.Logger, onChange func()) {
	defer close(cw.done)
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				log.Debug("configuration changed on disk", zap.String("path", target), zap.Stringer("op", ev.Op))
				onChange()
			}
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (cw *configWatcher) Close() error {
	err := cw.w.Close()
	<-cw.done
	return err
}

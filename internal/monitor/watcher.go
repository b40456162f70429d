package monitor

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// FsWatcher abstracts fsnotify.Watcher so subscription tests can inject
// event and error channels directly.
type FsWatcher interface {
	Add(path string) error
	Remove(path string) error
	Close() error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

// WatcherFactory creates an FsWatcher. The default builds a real fsnotify
// watcher; tests substitute mocks.
type WatcherFactory func() (FsWatcher, error)

// fsnotifyWatcher adapts *fsnotify.Watcher to the FsWatcher interface.
// fsnotify exposes Events and Errors as struct fields, not methods.
type fsnotifyWatcher struct {
	w *fsnotify.Watcher
}

func (f *fsnotifyWatcher) Add(path string) error             { return f.w.Add(path) }
func (f *fsnotifyWatcher) Remove(path string) error          { return f.w.Remove(path) }
func (f *fsnotifyWatcher) Close() error                      { return f.w.Close() }
func (f *fsnotifyWatcher) Events() <-chan fsnotify.Event     { return f.w.Events }
func (f *fsnotifyWatcher) Errors() <-chan error              { return f.w.Errors }

// NewFsWatcher is the default WatcherFactory.
func NewFsWatcher() (FsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("monitor: creating filesystem watcher: %w", err)
	}

	return &fsnotifyWatcher{w: w}, nil
}

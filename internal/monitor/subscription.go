package monitor

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher error backoff bounds. Sustained error streams (e.g. kernel event
// queue overflow) are throttled instead of spinning.
const (
	watchErrInitBackoff = 100 * time.Millisecond
	watchErrMaxBackoff  = 30 * time.Second
	watchErrBackoffMult = 2
)

// defaultRenameWindow is how long a Rename notification waits for its
// matching Create before decaying into a Deleted event. inotify reports a
// rename as separate old-path and new-path notifications; pairing them is
// the only way to produce a Moved record with both paths.
const defaultRenameWindow = 500 * time.Millisecond

// Subscription owns one long-lived recursive watch over a single root.
// It runs until its context is canceled; there is no automatic restart after
// the underlying notification channel fails — a root that stops being
// watchable is logged and silently dropped, other roots are unaffected.
type Subscription struct {
	root         string
	logger       *slog.Logger
	newWatcher   WatcherFactory
	renameWindow time.Duration

	// watchedDirs remembers every directory a watch was registered for, so
	// delete and rename events for vanished paths can still be classified
	// as directories (the path is gone, stat no longer answers).
	watchedDirs map[string]bool
}

// NewSubscription creates a Subscription for one resolved watch root.
func NewSubscription(root string, factory WatcherFactory, logger *slog.Logger) *Subscription {
	if factory == nil {
		factory = NewFsWatcher
	}

	return &Subscription{
		root:         root,
		logger:       logger.With(slog.String("root", root)),
		newWatcher:   factory,
		renameWindow: defaultRenameWindow,
		watchedDirs:  make(map[string]bool),
	}
}

// Run establishes the recursive watch and delivers ChangeEvents to events
// until ctx is canceled or the notification channel closes. Events within
// this root are delivered in the order the OS reports them. The sequence is
// not restartable; a fresh Subscription is needed to watch the root again.
func (s *Subscription) Run(ctx context.Context, events chan<- ChangeEvent) error {
	watcher, err := s.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := s.addRecursive(watcher, s.root); err != nil {
		return err
	}

	s.logger.Info("watch subscription started",
		slog.Int("directories", len(s.watchedDirs)),
	)

	s.watchLoop(ctx, watcher, events)

	s.logger.Info("watch subscription stopped")

	return nil
}

// addRecursive registers a watch on dir and every directory below it.
// Unreadable subdirectories are skipped with a warning; partial coverage
// beats losing the whole root to one permission error.
func (s *Subscription) addRecursive(watcher FsWatcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// The root itself being unwalkable means the subscription
			// covers nothing — that is a startup failure, not a skip.
			if path == dir {
				return fmt.Errorf("monitor: walking %s: %w", path, walkErr)
			}

			s.logger.Warn("walk error during watch registration",
				slog.String("path", path), slog.String("error", walkErr.Error()))

			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if err := watcher.Add(path); err != nil {
			// Only the root itself is fatal — losing it means the
			// subscription covers nothing.
			if path == dir {
				return fmt.Errorf("monitor: watching %s: %w", path, err)
			}

			s.logger.Warn("could not watch directory",
				slog.String("path", path), slog.String("error", err.Error()))

			return filepath.SkipDir
		}

		s.watchedDirs[path] = true

		return nil
	})
}

// watchLoop is the subscription's main select loop: fsnotify events, watcher
// errors with exponential backoff, rename pairing expiry, and cancellation.
func (s *Subscription) watchLoop(ctx context.Context, watcher FsWatcher, events chan<- ChangeEvent) {
	errBackoff := watchErrInitBackoff

	// Pending rename state. renameExpiry stays nil (blocking forever) while
	// no rename is waiting for its Create counterpart.
	var pendingRename string
	var renameTimer *time.Timer
	var renameExpiry <-chan time.Time

	clearPending := func() {
		pendingRename = ""
		renameExpiry = nil

		if renameTimer != nil {
			renameTimer.Stop()
		}
	}

	flushPending := func() {
		if pendingRename == "" {
			return
		}

		// Queued without blocking: on shutdown the context is already
		// canceled, and deliver would race its Done channel against the
		// send. The owner drains the channel after subscriptions exit,
		// so a queued event is never lost.
		ev := s.vanishEvent(pendingRename)
		select {
		case events <- ev:
		default:
		}

		clearPending()
	}

	for {
		select {
		case <-ctx.Done():
			flushPending()
			return

		case fsEvent, ok := <-watcher.Events():
			if !ok {
				flushPending()
				s.logger.Warn("notification channel closed, root no longer watched")

				return
			}

			errBackoff = watchErrInitBackoff

			switch {
			case fsEvent.Has(fsnotify.Rename):
				// Hold the old path; the matching Create names the destination.
				flushPending()
				pendingRename = fsEvent.Name
				renameTimer = time.NewTimer(s.renameWindow)
				renameExpiry = renameTimer.C

			case fsEvent.Has(fsnotify.Create) && pendingRename != "":
				src := pendingRename
				clearPending()
				s.handleMoved(ctx, watcher, src, fsEvent.Name, events)

			default:
				flushPending()
				s.handleFsEvent(ctx, fsEvent, watcher, events)
			}

		case watchErr, ok := <-watcher.Errors():
			if !ok {
				flushPending()
				s.logger.Warn("error channel closed, root no longer watched")

				return
			}

			s.logger.Warn("filesystem watcher error",
				slog.String("error", watchErr.Error()),
				slog.Duration("backoff", errBackoff),
			)

			if sleepCtx(ctx, errBackoff) != nil {
				flushPending()
				return
			}

			errBackoff *= watchErrBackoffMult
			if errBackoff > watchErrMaxBackoff {
				errBackoff = watchErrMaxBackoff
			}

		case <-renameExpiry:
			// No Create arrived — the entry left the watched subtree.
			ev := s.vanishEvent(pendingRename)
			clearPending()
			s.deliver(ctx, events, ev)
		}
	}
}

// handleFsEvent classifies a single non-rename fsnotify event.
func (s *Subscription) handleFsEvent(
	ctx context.Context, fsEvent fsnotify.Event, watcher FsWatcher, events chan<- ChangeEvent,
) {
	// Pure chmod is noise: no content changed.
	if fsEvent.Has(fsnotify.Chmod) && !fsEvent.Has(fsnotify.Create) && !fsEvent.Has(fsnotify.Write) {
		return
	}

	switch {
	case fsEvent.Has(fsnotify.Create):
		s.handleCreate(ctx, watcher, fsEvent.Name, events)

	case fsEvent.Has(fsnotify.Write):
		s.deliver(ctx, events, ChangeEvent{
			Kind:  KindModified,
			Path:  fsEvent.Name,
			IsDir: s.watchedDirs[fsEvent.Name],
		})

	case fsEvent.Has(fsnotify.Remove):
		s.deliver(ctx, events, s.vanishEvent(fsEvent.Name))
	}
}

// handleCreate reports a created entry. New directories are added to the
// watch set and scanned: entries created between the mkdir and the watch
// registration would otherwise go unreported.
func (s *Subscription) handleCreate(
	ctx context.Context, watcher FsWatcher, path string, events chan<- ChangeEvent,
) {
	info, err := os.Stat(path)
	if err != nil {
		// Created and removed before we could look — report as a file.
		s.deliver(ctx, events, ChangeEvent{Kind: KindCreated, Path: path})
		return
	}

	s.deliver(ctx, events, ChangeEvent{Kind: KindCreated, Path: path, IsDir: info.IsDir()})

	if info.IsDir() {
		s.watchNewDirectory(ctx, watcher, path, events)
	}
}

// watchNewDirectory registers watches over a freshly created directory tree
// and reports entries already inside it.
func (s *Subscription) watchNewDirectory(
	ctx context.Context, watcher FsWatcher, dir string, events chan<- ChangeEvent,
) {
	if err := watcher.Add(dir); err != nil {
		s.logger.Warn("could not watch new directory",
			slog.String("path", dir), slog.String("error", err.Error()))

		return
	}

	s.watchedDirs[dir] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug("could not scan new directory",
			slog.String("path", dir), slog.String("error", err.Error()))

		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		entryPath := filepath.Join(dir, entry.Name())
		s.deliver(ctx, events, ChangeEvent{
			Kind:  KindCreated,
			Path:  entryPath,
			IsDir: entry.IsDir(),
		})

		if entry.IsDir() {
			s.watchNewDirectory(ctx, watcher, entryPath, events)
		}
	}
}

// handleMoved reports a paired rename. A moved directory keeps its subtree
// contents, so only the watch registrations need refreshing — no per-entry
// events are emitted for the destination.
func (s *Subscription) handleMoved(
	ctx context.Context, watcher FsWatcher, src, dst string, events chan<- ChangeEvent,
) {
	wasDir := s.watchedDirs[src]
	if wasDir {
		delete(s.watchedDirs, src)
	}

	info, err := os.Stat(dst)
	isDir := wasDir
	if err == nil {
		isDir = info.IsDir()
	}

	s.deliver(ctx, events, ChangeEvent{
		Kind:     KindMoved,
		Path:     src,
		DestPath: dst,
		IsDir:    isDir,
	})

	if isDir {
		if err := s.addRecursive(watcher, dst); err != nil {
			s.logger.Warn("could not re-watch moved directory",
				slog.String("path", dst), slog.String("error", err.Error()))
		}
	}
}

// vanishEvent builds the Deleted event for a path that no longer exists,
// answering the directory flag from the watched-directory set.
func (s *Subscription) vanishEvent(path string) ChangeEvent {
	isDir := s.watchedDirs[path]
	if isDir {
		delete(s.watchedDirs, path)
	}

	return ChangeEvent{Kind: KindDeleted, Path: path, IsDir: isDir}
}

// deliver sends ev to the pipeline unless the subscription is shutting down.
func (s *Subscription) deliver(ctx context.Context, events chan<- ChangeEvent, ev ChangeEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// sleepCtx sleeps for d or until ctx is canceled, returning ctx.Err() in
// the canceled case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// logFilePermissions matches the standard log file permissions (owner rw, group/other r).
const logFilePermissions = 0o644

// logDirPermissions matches the standard directory permissions (owner rwx, group/other rx).
const logDirPermissions = 0o755

// Writer is the append-only sink for the live log. Append, Rotate, and Close
// share one mutex: an append that races a rotation either completes before
// the snapshot is taken (and is captured in the archive) or waits until after
// truncation (and lands in the fresh empty log). A record is never dropped.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open creates or opens the live log for appending. The parent directory is
// created if missing. Failure here is fatal to startup — there is nothing to
// monitor without a sink.
func Open(path string) (*Writer, error) {
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("logfile: log path %q is not absolute", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), logDirPermissions); err != nil {
		return nil, fmt.Errorf("logfile: creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("logfile: opening %s: %w", path, err)
	}

	return &Writer{f: f, path: path}, nil
}

// Path returns the live log's absolute path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one record to the live log and syncs it to disk before
// returning. Durability across the append/rotate boundary depends on this:
// a buffered record could vanish if rotation truncated underneath it.
func (w *Writer) Append(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return fmt.Errorf("logfile: append to closed writer")
	}

	if _, err := w.f.WriteString(rec.Line()); err != nil {
		return fmt.Errorf("logfile: appending to %s: %w", w.path, err)
	}

	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("logfile: syncing %s: %w", w.path, err)
	}

	return nil
}

// Rotate snapshots the live log's full contents, hands them to archive, and
// truncates the log to empty — all under the append mutex, so concurrent
// appends serialize against the whole sequence. If archive returns an error
// the log is left untouched; no records are lost to a failed rotation.
// An empty log skips the archive call and reports rotated=false.
func (w *Writer) Rotate(archive func(contents []byte) error) (rotated bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return false, fmt.Errorf("logfile: rotate on closed writer")
	}

	contents, err := os.ReadFile(w.path)
	if err != nil {
		return false, fmt.Errorf("logfile: reading %s for rotation: %w", w.path, err)
	}

	if len(contents) == 0 {
		return false, nil
	}

	if err := archive(contents); err != nil {
		return false, err
	}

	// The descriptor stays open across rotation; O_APPEND repositions the
	// next write to the new end of file, so truncate-in-place is safe.
	if err := w.f.Truncate(0); err != nil {
		return false, fmt.Errorf("logfile: truncating %s: %w", w.path, err)
	}

	return true, nil
}

// Close syncs and closes the live log. Further appends fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}

	f := w.f
	w.f = nil

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("logfile: syncing %s on close: %w", w.path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("logfile: closing %s: %w", w.path, err)
	}

	return nil
}

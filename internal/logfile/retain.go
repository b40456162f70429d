package logfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/farooq-001/watchdog/internal/compress"
)

// Sweeper deletes rotated archives older than the retention window. There is
// no in-memory index of archives: the log directory and file mtimes are the
// source of truth, so a sweep is idempotent and tolerates archives appearing
// or vanishing between cycles.
type Sweeper struct {
	dir    string
	base   string
	window time.Duration
	writer *Writer
	logger *slog.Logger
}

// NewSweeper creates a Sweeper for the archives of the given live log path.
// Deletion notes are appended to writer, mirroring the change-event stream.
func NewSweeper(logPath string, window time.Duration, writer *Writer, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		dir:    filepath.Dir(logPath),
		base:   filepath.Base(logPath),
		window: window,
		writer: writer,
		logger: logger,
	}
}

// inFamily reports whether name belongs to the live log's rotated-archive
// naming family: <base>_<timestamp> plus the compressed extension (or a
// .partial leftover from an interrupted archive write). Neighbors that merely
// share the base name as a prefix, the PID file at <base>.pid in particular,
// are not archives and must never be swept.
func (s *Sweeper) inFamily(name string) bool {
	if !strings.HasPrefix(name, s.base+"_") {
		return false
	}

	return strings.HasSuffix(name, compress.Extension) ||
		strings.HasSuffix(name, compress.Extension+".partial")
}

// Sweep enumerates the log directory and deletes every file in the live
// log's naming family whose mtime is strictly older than now minus the
// retention window. The live log itself is never a candidate. One file's
// failure (vanished mid-sweep, permission denied) does not abort the rest.
// Returns the number of files deleted.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("logfile: listing %s: %w", s.dir, err)
	}

	cutoff := now.Add(-s.window)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !s.inFamily(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Vanished between readdir and stat — the next sweep settles it.
			s.logger.Debug("stat failed during retention sweep",
				slog.String("name", name), slog.String("error", err.Error()))

			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, name)
		if err := os.Remove(path); err != nil {
			s.logger.Warn("could not delete expired archive",
				slog.String("path", path), slog.String("error", err.Error()))

			continue
		}

		deleted++

		s.logger.Info("deleted expired archive", slog.String("path", path))

		if s.writer != nil {
			if err := s.writer.Append(NewRecord("Deleted old log file: " + path)); err != nil {
				s.logger.Warn("could not record archive deletion",
					slog.String("error", err.Error()))
			}
		}
	}

	return deleted, nil
}

// Archives returns the paths of the live log's rotated archives, oldest
// first by mtime. Used by the status command.
func (s *Sweeper) Archives() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("logfile: listing %s: %w", s.dir, err)
	}

	type aged struct {
		path  string
		mtime time.Time
	}

	var found []aged

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !s.inFamily(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		found = append(found, aged{path: filepath.Join(s.dir, name), mtime: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].mtime.Before(found[j].mtime) })

	paths := make([]string, 0, len(found))
	for _, a := range found {
		paths = append(paths, a.path)
	}

	return paths, nil
}

package logfile

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/farooq-001/watchdog/internal/compress"
)

// archiveTimeLayout is the timestamp embedded in rotated archive names,
// e.g. file_changes.log_20260829_140500.gz.
const archiveTimeLayout = "20060102_150405"

// Rotator performs one compress-and-truncate cycle against the live log.
type Rotator struct {
	writer     *Writer
	compressor *compress.Compressor
	logger     *slog.Logger
}

// NewRotator creates a Rotator appending archives alongside the live log.
func NewRotator(writer *Writer, compressor *compress.Compressor, logger *slog.Logger) *Rotator {
	return &Rotator{
		writer:     writer,
		compressor: compressor,
		logger:     logger,
	}
}

// ArchiveName returns the archive path a rotation at the given time produces.
func (r *Rotator) ArchiveName(now time.Time) string {
	return r.writer.Path() + "_" + now.Format(archiveTimeLayout) + compress.Extension
}

// Run snapshots the live log, writes it as a timestamped gzip archive, and
// truncates the log to empty. A note naming the archive is appended to the
// fresh log afterwards. An empty log is a no-op cycle, reported as
// rotated=false. Errors leave the live log untouched and are returned for
// the caller to log and skip; a failed rotation retries from scratch on the
// next period.
func (r *Rotator) Run(now time.Time) (rotated bool, err error) {
	archivePath := r.ArchiveName(now)

	rotated, err = r.writer.Rotate(func(contents []byte) error {
		return r.compressor.WriteFile(archivePath, contents, logFilePermissions)
	})
	if err != nil {
		return false, fmt.Errorf("logfile: rotating %s: %w", r.writer.Path(), err)
	}

	if !rotated {
		r.logger.Debug("rotation skipped, live log empty",
			slog.String("log_file", r.writer.Path()),
		)

		return false, nil
	}

	r.logger.Info("live log rotated",
		slog.String("archive", archivePath),
	)

	// The note lands in the fresh log, as the original monitor did.
	note := NewRecord("Log compressed and saved as: " + archivePath)
	if err := r.writer.Append(note); err != nil {
		return true, fmt.Errorf("logfile: appending rotation note: %w", err)
	}

	return true, nil
}

package logfile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farooq-001/watchdog/internal/compress"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRotator_ArchiveNameEncodesTimestamp(t *testing.T) {
	t.Parallel()

	path := testLogPath(t)
	w, err := Open(path)
	require.NoError(t, err)
	defer w.Close()

	r := NewRotator(w, compress.New(compress.LevelDefault), discardLogger())
	now := time.Date(2026, 8, 29, 14, 5, 30, 0, time.UTC)

	assert.Equal(t, path+"_20260829_140530.gz", r.ArchiveName(now))
}

func TestRotator_RoundTrip(t *testing.T) {
	t.Parallel()

	path := testLogPath(t)
	w, err := Open(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(NewRecord("✨ Created: /etc/hosts")))
	require.NoError(t, w.Append(NewRecord("🔄 Modified: /etc/hosts")))

	preRotation, err := os.ReadFile(path)
	require.NoError(t, err)

	r := NewRotator(w, compress.New(compress.LevelDefault), discardLogger())
	now := time.Now()

	rotated, err := r.Run(now)
	require.NoError(t, err)
	assert.True(t, rotated)

	// Archive decompresses to exactly the pre-rotation contents.
	restored, err := compress.ReadFile(r.ArchiveName(now))
	require.NoError(t, err)
	assert.Equal(t, preRotation, restored)

	// The fresh log holds exactly the rotation note.
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Log compressed and saved as: "+r.ArchiveName(now))
}

func TestRotator_EmptyLogProducesNoArchive(t *testing.T) {
	t.Parallel()

	w, err := Open(testLogPath(t))
	require.NoError(t, err)
	defer w.Close()

	r := NewRotator(w, compress.New(compress.LevelDefault), discardLogger())
	now := time.Now()

	rotated, err := r.Run(now)
	require.NoError(t, err)
	assert.False(t, rotated)

	_, err = os.Stat(r.ArchiveName(now))
	assert.True(t, os.IsNotExist(err))
}

func TestRotator_FailedArchiveKeepsLog(t *testing.T) {
	t.Parallel()

	path := testLogPath(t)
	w, err := Open(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(NewRecord("kept")))

	// Drop a directory where the archive file would go so the rename fails.
	r := NewRotator(w, compress.New(compress.LevelDefault), discardLogger())
	now := time.Now()
	require.NoError(t, os.Mkdir(r.ArchiveName(now), 0o755))

	rotated, err := r.Run(now)
	require.Error(t, err)
	assert.False(t, rotated)

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "kept")
}

func TestRotator_SuccessiveRotationsProduceDistinctArchives(t *testing.T) {
	t.Parallel()

	path := testLogPath(t)
	w, err := Open(path)
	require.NoError(t, err)
	defer w.Close()

	r := NewRotator(w, compress.New(compress.LevelFast), discardLogger())

	require.NoError(t, w.Append(NewRecord("one")))

	_, err = r.Run(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, w.Append(NewRecord("two")))

	_, err = r.Run(time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)

	var archives int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".gz") {
			archives++
		}
	}

	assert.Equal(t, 2, archives)
}

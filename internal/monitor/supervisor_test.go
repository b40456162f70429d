package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farooq-001/watchdog/internal/compress"
	"github.com/farooq-001/watchdog/internal/logfile"
)

// mockWatcherPool hands out mock watchers and remembers them, so tests can
// inject events into the subscriptions the supervisor started.
type mockWatcherPool struct {
	mu      sync.Mutex
	created []*mockFsWatcher
	failAdd string // every handed-out watcher fails Add for this path
}

func (p *mockWatcherPool) factory() (FsWatcher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := newMockFsWatcher()
	m.failAdd = p.failAdd
	p.created = append(p.created, m)

	return m, nil
}

func (p *mockWatcherPool) first(t *testing.T) *mockFsWatcher {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		if len(p.created) > 0 {
			m := p.created[0]
			p.mu.Unlock()

			return m
		}
		p.mu.Unlock()

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("supervisor never created a watcher")

	return nil
}

// startSupervisor builds a Supervisor over a single watch root with the mock
// watcher pool injected and a short maintenance interval.
func startSupervisor(
	t *testing.T, root string, interval time.Duration, pool *mockWatcherPool,
) (logPath string, cancel func()) {
	t.Helper()

	logPath = filepath.Join(t.TempDir(), "file_changes.log")
	w, err := logfile.Open(logPath)
	require.NoError(t, err)

	logger := testLogger(t)
	sup := NewSupervisor(SupervisorConfig{
		Roots:          []string{root},
		Interval:       interval,
		Writer:         w,
		Rotator:        logfile.NewRotator(w, compress.New(compress.LevelFast), logger),
		Sweeper:        logfile.NewSweeper(logPath, 7*24*time.Hour, w, logger),
		Logger:         logger,
		WatcherFactory: pool.factory,
	})

	ctx, ctxCancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- sup.Run(ctx) }()

	cancel = func() {
		ctxCancel()

		select {
		case runErr := <-done:
			require.NoError(t, runErr)
		case <-time.After(5 * time.Second):
			t.Fatal("supervisor did not shut down")
		}
	}

	return logPath, cancel
}

func TestSupervisor_EventsFlowToLiveLog(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "watched.txt")

	pool := &mockWatcherPool{}
	logPath, cancel := startSupervisor(t, root, time.Hour, pool)

	mock := pool.first(t)
	mock.events <- fsnotify.Event{Name: file, Op: fsnotify.Write}

	assert.Eventually(t, func() bool {
		data, readErr := os.ReadFile(logPath)
		return readErr == nil && strings.Contains(string(data), "🔄 Modified: "+file)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	// Banner records bracket the run.
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "📢 File Integrity Monitoring Started!")
	assert.Contains(t, string(data), "❌ File Integrity Monitoring Stopped!")
}

func TestSupervisor_ShutdownFlushesPendingRename(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "moved-away.txt")

	pool := &mockWatcherPool{}
	logPath, cancel := startSupervisor(t, root, time.Hour, pool)

	mock := pool.first(t)
	mock.events <- fsnotify.Event{Name: src, Op: fsnotify.Rename}

	// Cancel while the rename still waits for its Create counterpart. The
	// decayed Deleted record must survive shutdown into the live log.
	time.Sleep(100 * time.Millisecond)
	cancel()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "❌ Deleted: "+src)
}

func TestSupervisor_MaintenanceRotatesAndSweeps(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pool := &mockWatcherPool{}
	logPath, cancel := startSupervisor(t, root, 50*time.Millisecond, pool)
	defer cancel()

	// An expired archive from a previous run.
	expired := logPath + "_20260701_000000.gz"
	require.NoError(t, os.WriteFile(expired, []byte("old"), 0o644))
	ancient := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(expired, ancient, ancient))

	// The startup banner gives the first rotation something to archive.
	assert.Eventually(t, func() bool {
		entries, readErr := os.ReadDir(filepath.Dir(logPath))
		if readErr != nil {
			return false
		}

		archives := 0
		expiredGone := true

		for _, e := range entries {
			if e.Name() == filepath.Base(expired) {
				expiredGone = false
			}

			if strings.HasSuffix(e.Name(), ".gz") && e.Name() != filepath.Base(expired) {
				archives++
			}
		}

		return archives >= 1 && expiredGone
	}, 5*time.Second, 20*time.Millisecond)
}

func TestSupervisor_NoRootsStillRunsMaintenance(t *testing.T) {
	t.Parallel()

	logPath := filepath.Join(t.TempDir(), "file_changes.log")
	w, err := logfile.Open(logPath)
	require.NoError(t, err)

	logger := testLogger(t)
	sup := NewSupervisor(SupervisorConfig{
		Roots:    []string{"/nonexistent-watchdog-root"},
		Interval: 50 * time.Millisecond,
		Writer:   w,
		Rotator:  logfile.NewRotator(w, compress.New(compress.LevelFast), logger),
		Sweeper:  logfile.NewSweeper(logPath, 7*24*time.Hour, w, logger),
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- sup.Run(ctx) }()

	// The startup banner rotates into an archive even with nothing watched.
	assert.Eventually(t, func() bool {
		entries, readErr := os.ReadDir(filepath.Dir(logPath))
		if readErr != nil {
			return false
		}

		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".gz") {
				return true
			}
		}

		return false
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case runErr := <-done:
		require.NoError(t, runErr)
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not shut down")
	}
}

func TestSupervisor_OneRootFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	goodRoot := t.TempDir()
	badRoot := t.TempDir()

	logPath := filepath.Join(t.TempDir(), "file_changes.log")
	w, err := logfile.Open(logPath)
	require.NoError(t, err)

	// The bad root resolves, but registering its watch fails.
	pool := &mockWatcherPool{failAdd: badRoot}
	logger := testLogger(t)
	sup := NewSupervisor(SupervisorConfig{
		Roots:          []string{badRoot, goodRoot},
		Interval:       time.Hour,
		Writer:         w,
		Rotator:        logfile.NewRotator(w, compress.New(compress.LevelFast), logger),
		Sweeper:        logfile.NewSweeper(logPath, 7*24*time.Hour, w, logger),
		Logger:         logger,
		WatcherFactory: pool.factory,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- sup.Run(ctx) }()

	// Wait for both subscriptions to have been attempted, then drive the
	// surviving one.
	var survivor *mockFsWatcher

	assert.Eventually(t, func() bool {
		pool.mu.Lock()
		defer pool.mu.Unlock()

		return len(pool.created) == 2
	}, 5*time.Second, 10*time.Millisecond)

	pool.mu.Lock()
	for _, m := range pool.created {
		for _, added := range m.added {
			if added == goodRoot {
				survivor = m
			}
		}
	}
	pool.mu.Unlock()

	require.NotNil(t, survivor, "no subscription covers the surviving root")

	file := filepath.Join(goodRoot, "alive.txt")
	survivor.events <- fsnotify.Event{Name: file, Op: fsnotify.Write}

	assert.Eventually(t, func() bool {
		data, readErr := os.ReadFile(logPath)
		return readErr == nil && strings.Contains(string(data), "🔄 Modified: "+file)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case runErr := <-done:
		require.NoError(t, runErr)
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not shut down")
	}
}

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/farooq-001/watchdog/internal/logfile"
)

// eventBufferSize bounds the shared pipeline channel. Subscriptions block
// once the translator falls this far behind, preserving per-root ordering
// instead of dropping events.
const eventBufferSize = 256

// SupervisorConfig holds the collaborators and policy knobs for a monitoring
// run. Writer, Rotator, and Sweeper are constructed by the caller so their
// lifecycle (open at startup, close at shutdown) has a single owner.
type SupervisorConfig struct {
	Roots    []string // candidate watch roots, resolved at startup
	Interval time.Duration
	Writer   *logfile.Writer
	Rotator  *logfile.Rotator
	Sweeper  *logfile.Sweeper
	Logger   *slog.Logger

	// WatcherFactory is injectable for tests; nil uses real fsnotify watchers.
	WatcherFactory WatcherFactory
}

// Supervisor runs the monitoring pipeline: one subscription goroutine per
// resolved root feeding a translator, in parallel with the timer-driven
// rotation and retention cycle. It runs until its context is canceled.
type Supervisor struct {
	cfg        SupervisorConfig
	translator *Translator
	logger     *slog.Logger
}

// NewSupervisor creates a Supervisor from its config.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	return &Supervisor{
		cfg:        cfg,
		translator: NewTranslator(cfg.Writer, cfg.Logger),
		logger:     cfg.Logger,
	}
}

// Run starts the monitoring run and blocks until ctx is canceled and all
// tasks have drained. The live log is closed before returning. Returns nil
// on clean shutdown; only startup failures surface as errors.
func (s *Supervisor) Run(ctx context.Context) error {
	roots := ResolveRoots(s.cfg.Roots)
	if len(roots) == 0 {
		s.logger.Warn("no watch roots exist, only log maintenance will run",
			slog.Int("candidates", len(s.cfg.Roots)),
		)
	}

	runID := uuid.NewString()
	s.logger.Info("file integrity monitoring starting",
		slog.String("run_id", runID),
		slog.Int("roots", len(roots)),
		slog.Duration("interval", s.cfg.Interval),
	)

	startBanner := fmt.Sprintf("📢 File Integrity Monitoring Started! (run %s)", runID)
	if err := s.cfg.Writer.Append(logfile.NewRecord(startBanner)); err != nil {
		s.cfg.Writer.Close()

		return fmt.Errorf("monitor: writing startup record: %w", err)
	}

	events := make(chan ChangeEvent, eventBufferSize)

	g, gctx := errgroup.WithContext(ctx)

	// Translator loop: runs until the events channel closes, which happens
	// only after every subscription has exited. Events flushed on the way
	// out are therefore always translated before shutdown completes.
	g.Go(func() error {
		for ev := range events {
			s.translator.Translate(ev)
		}

		return nil
	})

	// One subscription per root, joined separately so the events channel
	// can be closed once the last sender is gone. A subscription failure is
	// contained: it is logged and that root stops being watched, the others
	// keep running.
	var subs sync.WaitGroup
	for _, root := range roots {
		sub := NewSubscription(root, s.cfg.WatcherFactory, s.logger)

		subs.Add(1)
		g.Go(func() error {
			defer subs.Done()

			if err := sub.Run(gctx, events); err != nil {
				s.logger.Error("watch subscription failed",
					slog.String("root", root),
					slog.String("error", err.Error()),
				)
			}

			return nil
		})
	}

	go func() {
		subs.Wait()
		close(events)
	}()

	// Maintenance loop: sleep, rotate, sweep, repeat. Lets an in-progress
	// cycle finish on shutdown — no mid-rotation abort.
	g.Go(func() error {
		return s.maintenanceLoop(gctx)
	})

	err := g.Wait()

	stopBanner := "❌ File Integrity Monitoring Stopped!"
	if appendErr := s.cfg.Writer.Append(logfile.NewRecord(stopBanner)); appendErr != nil {
		s.logger.Warn("could not write shutdown record",
			slog.String("error", appendErr.Error()))
	}

	if closeErr := s.cfg.Writer.Close(); closeErr != nil {
		s.logger.Warn("could not close live log", slog.String("error", closeErr.Error()))
	}

	s.logger.Info("file integrity monitoring stopped", slog.String("run_id", runID))

	return err
}

// maintenanceLoop drives the periodic rotation and retention cycle until
// cancellation. Cycle errors are recovered locally: an unattended monitor
// must outlive a full disk or a permission hiccup, so I/O failures are
// logged and the next period retries from scratch.
func (s *Supervisor) maintenanceLoop(ctx context.Context) error {
	for {
		if err := sleepCtx(ctx, s.cfg.Interval); err != nil {
			return nil
		}

		if err := s.runCycle(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			s.logger.Warn("maintenance cycle failed, will retry next period",
				slog.String("error", err.Error()),
			)
		}
	}
}

// runCycle performs one rotation followed by a retention sweep. The sweep is
// deliberately coupled to a successful rotation: a failed rotation means the
// cycle is skipped wholesale and retried next period.
func (s *Supervisor) runCycle() error {
	now := time.Now()

	rotated, err := s.cfg.Rotator.Run(now)
	if err != nil {
		return err
	}

	deleted, err := s.cfg.Sweeper.Sweep(now)
	if err != nil {
		return err
	}

	s.logger.Debug("maintenance cycle complete",
		slog.Bool("rotated", rotated), slog.Int("archives_deleted", deleted))

	return nil
}

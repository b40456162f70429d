package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farooq-001/watchdog/internal/compress"
	"github.com/farooq-001/watchdog/internal/logfile"
	"github.com/farooq-001/watchdog/internal/monitor"
)

// newRunCmd builds the run command: the long-running monitoring daemon.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Monitor the configured watch roots until terminated",
		Long: "Starts recursive change monitoring over every configured watch root that\n" +
			"exists, appending one record per change to the live log. The log is\n" +
			"compressed into a timestamped archive on every rotation interval, and\n" +
			"archives older than the retention window are deleted. Runs until SIGINT\n" +
			"or SIGTERM.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd)
		},
	}
}

func runDaemon(cmd *cobra.Command) error {
	logger := buildLogger()

	cleanup, err := writePIDFile(resolvedCfg.PIDPath())
	if err != nil {
		return err
	}
	defer cleanup()

	// The live log is the one fatal resource: no sink, nothing to monitor.
	writer, err := logfile.Open(resolvedCfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening live log: %w", err)
	}

	compressor, err := compress.ParseLevel(resolvedCfg.Compression)
	if err != nil {
		writer.Close()
		return err
	}

	supervisor := monitor.NewSupervisor(monitor.SupervisorConfig{
		Roots:    resolvedCfg.Roots,
		Interval: resolvedCfg.Interval,
		Writer:   writer,
		Rotator:  logfile.NewRotator(writer, compressor, logger),
		Sweeper:  logfile.NewSweeper(resolvedCfg.LogFile, resolvedCfg.Retention, writer, logger),
		Logger:   logger,
	})

	// The supervisor owns the writer from here on and closes it at shutdown.
	ctx := shutdownContext(cmd.Context(), logger)

	return supervisor.Run(ctx)
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/farooq-001/watchdog/internal/compress"
	"github.com/farooq-001/watchdog/internal/logfile"
)

// newRotateCmd builds the rotate command: one manual rotation plus sweep.
func newRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the live log and sweep expired archives once",
		Long: "Compresses the live log into a timestamped archive, truncates it, and\n" +
			"deletes archives older than the retention window. Intended for operators\n" +
			"while the daemon is stopped; a running daemon rotates on its own timer.",
		RunE: func(*cobra.Command, []string) error {
			return runRotate()
		},
	}
}

func runRotate() error {
	logger := buildLogger()

	writer, err := logfile.Open(resolvedCfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening live log: %w", err)
	}
	defer writer.Close()

	compressor, err := compress.ParseLevel(resolvedCfg.Compression)
	if err != nil {
		return err
	}

	now := time.Now()

	rotator := logfile.NewRotator(writer, compressor, logger)

	rotated, err := rotator.Run(now)
	if err != nil {
		return err
	}

	sweeper := logfile.NewSweeper(resolvedCfg.LogFile, resolvedCfg.Retention, writer, logger)

	deleted, err := sweeper.Sweep(now)
	if err != nil {
		return err
	}

	if rotated {
		fmt.Printf("Rotated %s into %s; deleted %d expired archive(s)\n",
			resolvedCfg.LogFile, rotator.ArchiveName(now), deleted)
	} else {
		fmt.Printf("Live log %s is empty, nothing to rotate; deleted %d expired archive(s)\n",
			resolvedCfg.LogFile, deleted)
	}

	return nil
}

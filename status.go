package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/farooq-001/watchdog/internal/logfile"
)

// newStatusCmd builds the status command: is the daemon up, and how big is
// its footprint on disk.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the monitor is running and the state of its logs",
		RunE: func(*cobra.Command, []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	pid, err := readPIDFile(resolvedCfg.PIDPath())

	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Println("Monitor: not running (no PID file)")
	case err != nil:
		return err
	case processAlive(pid):
		fmt.Printf("Monitor: running (PID %d)\n", pid)
	default:
		fmt.Printf("Monitor: not running (stale PID file, last PID %d)\n", pid)
	}

	if info, statErr := os.Stat(resolvedCfg.LogFile); statErr == nil {
		fmt.Printf("Live log: %s (%d bytes)\n", resolvedCfg.LogFile, info.Size())
	} else {
		fmt.Printf("Live log: %s (not created yet)\n", resolvedCfg.LogFile)
	}

	sweeper := logfile.NewSweeper(resolvedCfg.LogFile, resolvedCfg.Retention, nil, buildLogger())

	archives, err := sweeper.Archives()
	if err != nil {
		return err
	}

	fmt.Printf("Archives: %d\n", len(archives))

	if len(archives) > 0 {
		fmt.Printf("Oldest archive: %s\n", archives[0])
	}

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slatebar/slate/cli"
	"github.com/slatebar/slate/config"
	"github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/internal/daemon"
	"github.com/slatebar/slate/internal/daemon/collector"
	"github.com/slatebar/slate/internal/daemon/lockfile"
	"github.com/slatebar/slate/internal/daemon/store"
	"github.com/slatebar/slate/internal/hypr"
	"github.com/slatebar/slate/internal/mixer"
	"github.com/slatebar/slate/internal/sysfs"
	"github.com/slatebar/slate/logging"
	"github.com/slatebar/slate/pkg/models"
)

var daemonNames = []string{"time", "display", "metrics"}

// NewDaemonCmd returns the daemon command tree: one subcommand per daemon
// plus "all", each with start/stop/status.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the slate background daemons",
		Long: `Each daemon owns one state domain and serves it over a unix socket as
newline-delimited JSON: a full snapshot on connect, then one line per change.

Examples:
  # Start the clock daemon in the foreground
  slate daemon time start

  # Start all three daemons as background processes
  slate daemon all start

  # Check whether the metrics daemon is up
  slate daemon metrics status`,
	}

	for _, name := range daemonNames {
		cmd.AddCommand(newDaemonSubtree(name))
	}
	cmd.AddCommand(newDaemonAllCmd())
	return cmd
}

func newDaemonSubtree(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage the %s daemon", name),
	}
	cmd.AddCommand(newStartCmd(name))
	cmd.AddCommand(newStopCmd(name))
	cmd.AddCommand(newStatusCmd(name))
	return cmd
}

func newStartCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner, err := buildDaemon(name, cfg)
			if err != nil {
				return err
			}

			err = runner.Run(ctx)
			if errors.Is(err, errors.ErrCodeAlreadyRunning) {
				// A live instance already serves this socket; nothing to do.
				logging.NewLogger(name).Info("Already running, exiting")
				return nil
			}
			return err
		},
	}
}

func newStopCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			return stopDaemon(name, cfg)
		},
	}
}

func newStatusCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if !daemonRunning(name, cfg) {
				fmt.Println("Stopped")
				os.Exit(1)
			}
			pid, _ := lockfile.ReadPID(cfg.LockPath(name))
			fmt.Printf("Running (PID: %d)\nSocket: %s\n", pid, cfg.SocketPath(name))
			return nil
		},
	}
}

func newDaemonAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Manage all daemons together",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start every daemon as a background process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to resolve own binary: %w", err)
			}

			progress := cli.NewProgressReporter()
			for _, name := range daemonNames {
				if daemonRunning(name, cfg) {
					progress.Update(name, "completed")
					continue
				}
				progress.Update(name, "starting")
				child := exec.Command(exe, "daemon", name, "start")
				child.Stdout = nil
				child.Stderr = nil
				if err := child.Start(); err != nil {
					progress.Update(name, "failed")
					continue
				}
				go func() { _ = child.Wait() }()
			}

			// Give the children a moment to bind their sockets.
			deadline := time.Now().Add(3 * time.Second)
			for time.Now().Before(deadline) {
				done := true
				for _, name := range daemonNames {
					if daemonRunning(name, cfg) {
						progress.Update(name, "completed")
					} else {
						done = false
					}
				}
				if done {
					break
				}
				time.Sleep(100 * time.Millisecond)
			}
			progress.Done()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop every running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			for _, name := range daemonNames {
				if err := stopDaemon(name, cfg); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the status of every daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			anyDown := false
			for _, name := range daemonNames {
				if daemonRunning(name, cfg) {
					pid, _ := lockfile.ReadPID(cfg.LockPath(name))
					fmt.Printf("%-8s running (PID: %d)\n", name, pid)
				} else {
					fmt.Printf("%-8s stopped\n", name)
					anyDown = true
				}
			}
			if anyDown {
				os.Exit(1)
			}
			return nil
		},
	})

	return cmd
}

func daemonRunning(name string, cfg *config.Config) bool {
	return lockfile.ProbeSocket(cfg.SocketPath(name), 500*time.Millisecond)
}

func stopDaemon(name string, cfg *config.Config) error {
	pid, err := lockfile.ReadPID(cfg.LockPath(name))
	if err != nil || pid == 0 {
		fmt.Printf("%s is not running\n", name)
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send stop signal: %w", err)
	}
	fmt.Printf("Sent SIGTERM to %s (PID %d)\n", name, pid)
	return nil
}

// buildDaemon wires the store, collectors, and supervisor for one daemon.
func buildDaemon(name string, cfg *config.Config) (daemon.Runner, error) {
	logger := logging.NewLoggerWithConfig(name, cfg.Logging)
	socketPath := cfg.SocketPath(name)
	lockPath := cfg.LockPath(name)

	switch name {
	case "time":
		st := store.New(models.NewTimeInfo(time.Now()))
		clock := collector.NewClock(st, clockwork.NewRealClock(), logger)
		return daemon.New(name, socketPath, lockPath, st, []collector.Collector{clock}, logger), nil

	case "display":
		st := store.New(models.DisplayState{Workspaces: []models.Workspace{}})
		client := hypr.NewClient(cfg.Display.IPCTimeout(), logger)
		display := collector.NewDisplay(st, client, cfg.Display.PollInterval(), logger)
		return daemon.New(name, socketPath, lockPath, st, []collector.Collector{display}, logger), nil

	case "metrics":
		st := store.New(models.MetricsState{})
		collectors := buildMetricsCollectors(st, cfg, logger)
		return daemon.New(name, socketPath, lockPath, st, collectors, logger), nil
	}

	return nil, errors.New(errors.ErrCodeDaemonNotFound, fmt.Sprintf("unknown daemon '%s'", name)).
		WithDetail("daemon", name)
}

func buildMetricsCollectors(st *store.Store[models.MetricsState], cfg *config.Config, logger *logrus.Entry) []collector.Collector {
	battery, err := sysfs.FindBattery(cfg.Metrics.PowerSupplyRoot, cfg.Metrics.BatteryPatterns)
	if err != nil {
		logger.Debug("No battery found")
	}
	backlight, err := sysfs.FindBacklight(cfg.Metrics.BacklightRoot)
	if err != nil {
		logger.Debug("No backlight found")
	}

	power := collector.NewPower(st, battery, backlight, cfg.Metrics.BatteryRefresh(), logger)
	audio := collector.NewAudio(st, mixer.NewPactlMonitor(logger), logger)
	return []collector.Collector{power, audio}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slatebar/slate/cli"
	"github.com/slatebar/slate/pkg/client"
)

// NewTailCmd creates the `tail` command: raw snapshot lines to stdout.
func NewTailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail <daemon>",
		Short: "Stream a daemon's snapshots as JSON lines",
		Long: `Connects to a daemon socket and prints every snapshot line to stdout.
The first line is the full current state; each following line is one change.

Examples:
  # Feed the time daemon into a bar widget
  slate tail time

  # Pretty-print metrics changes
  slate tail metrics | jq .`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: daemonNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			spawn, _ := cmd.Flags().GetBool("spawn")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			lines := client.Stream(ctx, args[0], client.StreamOptions{
				SocketPath:  cfg.SocketPath(args[0]),
				SpawnDaemon: spawn,
			})
			for line := range lines {
				fmt.Println(string(line))
			}
			return nil
		},
	}

	cmd.Flags().Bool("spawn", false, "Start the daemon if it is not running")
	return cmd
}

package cmd

import (
	"fmt"
	"os"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/slatebar/slate/cli"
	"github.com/slatebar/slate/pkg/paths"
	"github.com/slatebar/slate/tui/theme"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs [daemon...]",
		Short: "Show and follow daemon log files",
		Long: `Reads the per-component log files written under the slate log directory.
With no arguments, all daemon logs are shown interleaved.

Examples:
  # Follow all daemon logs
  slate logs -f

  # Follow only the metrics daemon
  slate logs metrics -f`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", 200, "Number of lines to seek back from the end of each file")
	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)
	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")

	components := args
	if len(components) == 0 {
		components = daemonNames
	}

	type tailedLine struct {
		component string
		text      string
	}
	lines := make(chan tailedLine, 256)
	done := make(chan struct{}, 8)
	active := 0

	for _, component := range components {
		logPath := paths.LogFile(component)
		if _, err := os.Stat(logPath); err != nil {
			logger.Warnf("no log file for %s (%s)", component, logPath)
			continue
		}

		t, err := tail.TailFile(logPath, tail.Config{
			Follow:    follow,
			ReOpen:    follow,
			Logger:    tail.DiscardingLogger,
			Location:  tailLocation(logPath, tailLines),
			MustExist: true,
		})
		if err != nil {
			return fmt.Errorf("failed to tail %s: %w", logPath, err)
		}

		active++
		component := component
		go func() {
			for line := range t.Lines {
				if line.Err != nil {
					continue
				}
				lines <- tailedLine{component: component, text: line.Text}
			}
			done <- struct{}{}
		}()
	}

	if active == 0 {
		return nil
	}

	t := theme.DefaultTheme
	prefixed := len(components) > 1
	finished := 0
	for finished < active {
		select {
		case line := <-lines:
			if prefixed {
				fmt.Printf("%s %s\n", t.Accent.Render("["+line.component+"]"), line.text)
			} else {
				fmt.Println(line.text)
			}
		case <-done:
			finished++
		}
	}

	// Drain anything buffered after the last tailer stopped.
	for {
		select {
		case line := <-lines:
			if prefixed {
				fmt.Printf("%s %s\n", t.Accent.Render("["+line.component+"]"), line.text)
			} else {
				fmt.Println(line.text)
			}
		default:
			return nil
		}
	}
}

// tailLocation seeks near the end of large files instead of replaying the
// whole history. hpcloud/tail only offers byte offsets, so the line count
// is approximated generously.
func tailLocation(path string, lines int) *tail.SeekInfo {
	if lines <= 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	const approxLineBytes = 200
	offset := int64(lines * approxLineBytes)
	if info.Size() <= offset {
		return nil
	}
	return &tail.SeekInfo{Offset: -offset, Whence: 2}
}

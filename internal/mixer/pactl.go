package mixer

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	slateerrors "github.com/slatebar/slate/errors"
)

const queryTimeout = 2 * time.Second

var volumeRe = regexp.MustCompile(`(\d+)%`)

// PactlMonitor implements Monitor over the pactl command-line client. A
// long-lived `pactl subscribe` stream produces events; point queries run
// short-lived pactl commands against the default devices.
type PactlMonitor struct {
	events      chan struct{}
	reconnector *Reconnector
	cancel      context.CancelFunc
	logger      *logrus.Entry

	// runCommand is swapped in tests.
	runCommand func(ctx context.Context, args ...string) (string, error)
}

// NewPactlMonitor starts the subscription stream. The monitor keeps itself
// connected across pulse/pipewire restarts.
func NewPactlMonitor(logger *logrus.Entry) *PactlMonitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &PactlMonitor{
		events:     make(chan struct{}, 8),
		cancel:     cancel,
		logger:     logger,
		runCommand: runPactl,
	}
	m.reconnector = NewReconnector(openSubscribeStream, m.consumeStream, logger)
	go m.reconnector.Run(ctx)
	return m
}

func (m *PactlMonitor) Events() <-chan struct{} { return m.events }

func (m *PactlMonitor) Close() error {
	m.cancel()
	return nil
}

// consumeStream reads subscribe lines until the stream errors. Only events
// about sinks, sources, and the server itself are forwarded; stream and
// client churn is noise.
func (m *PactlMonitor) consumeStream(stream io.ReadCloser) error {
	defer stream.Close()
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "on sink") && !strings.Contains(line, "on source") && !strings.Contains(line, "on server") {
			continue
		}
		select {
		case m.events <- struct{}{}:
		default:
		}
	}
	return scanner.Err()
}

// State queries volume and mute for the default sink and the default
// source's mute. Each attribute fails independently; a nil field tells the
// caller to keep what it had.
func (m *PactlMonitor) State() (DeviceState, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var state DeviceState
	var anyOK bool

	if out, err := m.runCommand(ctx, "get-sink-volume", "@DEFAULT_SINK@"); err == nil {
		if v, ok := parseVolume(out); ok {
			state.Volume = &v
			anyOK = true
		}
	}
	if out, err := m.runCommand(ctx, "get-sink-mute", "@DEFAULT_SINK@"); err == nil {
		if muted, ok := parseMute(out); ok {
			state.SpeakerMuted = &muted
			anyOK = true
		}
	}
	if out, err := m.runCommand(ctx, "get-source-mute", "@DEFAULT_SOURCE@"); err == nil {
		if muted, ok := parseMute(out); ok {
			state.MicMuted = &muted
			anyOK = true
		}
	}

	if !anyOK {
		return state, slateerrors.MixerUnavailable(nil)
	}
	return state, nil
}

// parseVolume extracts the first channel's percentage from a
// get-sink-volume line.
func parseVolume(out string) (int, bool) {
	match := volumeRe.FindStringSubmatch(out)
	if match == nil {
		return 0, false
	}
	v, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	if v > 100 {
		v = 100
	}
	return v, true
}

// parseMute reads a "Mute: yes" / "Mute: no" line.
func parseMute(out string) (bool, bool) {
	s := strings.ToLower(out)
	idx := strings.Index(s, "mute:")
	if idx < 0 {
		return false, false
	}
	rest := strings.TrimSpace(s[idx+len("mute:"):])
	switch {
	case strings.HasPrefix(rest, "yes"):
		return true, true
	case strings.HasPrefix(rest, "no"):
		return false, true
	}
	return false, false
}

func runPactl(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "pactl", args...).Output()
	return string(out), err
}

// openSubscribeStream launches pactl subscribe and hands back its stdout.
// The process dies with the stream: closing the pipe is not enough for
// pactl, so the ReadCloser also kills the process.
func openSubscribeStream(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, "pactl", "subscribe")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &processStream{ReadCloser: stdout, cmd: cmd}, nil
}

type processStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *processStream) Close() error {
	err := p.ReadCloser.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
	return err
}

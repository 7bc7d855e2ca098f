package client

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/slatebar/slate/pkg/paths"
)

// StreamOptions tunes a long-lived snapshot subscription.
type StreamOptions struct {
	// SocketPath overrides the default location for the daemon's socket.
	SocketPath string

	// SpawnDaemon starts `slate daemon <name> start` in the background
	// when the first connection attempt fails, then keeps retrying.
	SpawnDaemon bool

	// MaxInterval caps reconnect backoff. Zero means 15 seconds.
	MaxInterval time.Duration
}

// Stream subscribes to a daemon and delivers every snapshot line on the
// returned channel until ctx is cancelled. Disconnects are survived by
// redialing with exponential backoff; each successful redial yields a
// fresh full snapshot first, so consumers never render stale state.
func Stream(ctx context.Context, daemon string, opts StreamOptions) <-chan []byte {
	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = paths.SocketPath(daemon)
	}
	maxInterval := opts.MaxInterval
	if maxInterval == 0 {
		maxInterval = 15 * time.Second
	}

	out := make(chan []byte)
	go func() {
		defer close(out)

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = 200 * time.Millisecond
		policy.MaxInterval = maxInterval
		policy.MaxElapsedTime = 0

		spawned := false
		for ctx.Err() == nil {
			conn, err := DialPath(socketPath)
			if err != nil {
				if opts.SpawnDaemon && !spawned {
					spawned = true
					spawn(daemon)
				}
				if !sleepCtx(ctx, policy.NextBackOff()) {
					return
				}
				continue
			}

			policy.Reset()
			if !pump(ctx, conn, out) {
				_ = conn.Close()
				return
			}
			_ = conn.Close()

			if !sleepCtx(ctx, policy.NextBackOff()) {
				return
			}
		}
	}()
	return out
}

// pump forwards lines until the connection breaks. Returns false when ctx
// ended and the stream should stop for good.
func pump(ctx context.Context, conn *Conn, out chan<- []byte) bool {
	// Unblock the blocking read when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		line, err := conn.Next()
		if err != nil {
			return ctx.Err() == nil
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return false
		}
	}
}

// spawn launches the daemon detached. Failures are ignored; the dial loop
// surfaces the absence either way.
func spawn(daemon string) {
	exe, err := os.Executable()
	if err != nil {
		exe = "slate"
	}
	cmd := exec.Command(exe, "daemon", daemon, "start")
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err == nil {
		go func() { _ = cmd.Wait() }()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

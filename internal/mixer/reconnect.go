package mixer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// ConnState is the reconnector's lifecycle position.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Reconnector keeps a stream-consuming function supplied with a live
// stream, redialing with exponential backoff whenever the stream dies.
// The connect and consume functions are injected so the state machine is
// testable without a real audio server.
type Reconnector struct {
	connect func(ctx context.Context) (io.ReadCloser, error)
	consume func(stream io.ReadCloser) error
	logger  *logrus.Entry

	mu    sync.Mutex
	state ConnState
}

func NewReconnector(connect func(ctx context.Context) (io.ReadCloser, error), consume func(io.ReadCloser) error, logger *logrus.Entry) *Reconnector {
	return &Reconnector{connect: connect, consume: consume, logger: logger}
}

// State returns the current connection state.
func (r *Reconnector) State() ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reconnector) setState(s ConnState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run loops until ctx is cancelled: dial, consume until the stream errors,
// back off, dial again. A successful connection resets the backoff so a
// long-stable stream that drops reconnects quickly.
func (r *Reconnector) Run(ctx context.Context) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			r.setState(StateDisconnected)
			return
		}

		r.setState(StateConnecting)
		stream, err := r.connect(ctx)
		if err != nil {
			r.setState(StateDisconnected)
			r.logger.WithError(err).Debug("Stream connect failed")
			if !r.sleep(ctx, policy.NextBackOff()) {
				return
			}
			continue
		}

		r.setState(StateConnected)
		policy.Reset()
		if err := r.consume(stream); err != nil {
			r.logger.WithError(err).Debug("Stream ended")
		}
		r.setState(StateDisconnected)

		if !r.sleep(ctx, policy.NextBackOff()) {
			return
		}
	}
}

func (r *Reconnector) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

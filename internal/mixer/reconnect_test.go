package mixer

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatebar/slate/logging"
)

func TestReconnectorStates(t *testing.T) {
	t.Run("reaches connected on successful dial", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		connected := make(chan struct{})
		release := make(chan struct{})

		r := NewReconnector(
			func(ctx context.Context) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("")), nil
			},
			func(stream io.ReadCloser) error {
				close(connected)
				<-release
				return io.EOF
			},
			logging.NewLogger("test"),
		)
		go r.Run(ctx)

		select {
		case <-connected:
		case <-time.After(time.Second):
			t.Fatal("consume never ran")
		}
		assert.Equal(t, StateConnected, r.State())

		close(release)
	})

	t.Run("retries after connect failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var attempts atomic.Int32
		r := NewReconnector(
			func(ctx context.Context) (io.ReadCloser, error) {
				attempts.Add(1)
				return nil, io.ErrUnexpectedEOF
			},
			func(stream io.ReadCloser) error { return nil },
			logging.NewLogger("test"),
		)
		go r.Run(ctx)

		require.Eventually(t, func() bool {
			return attempts.Load() >= 2
		}, 5*time.Second, 10*time.Millisecond)
		assert.Equal(t, StateDisconnected, r.State())
	})

	t.Run("redials after the stream ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var dials atomic.Int32
		r := NewReconnector(
			func(ctx context.Context) (io.ReadCloser, error) {
				dials.Add(1)
				return io.NopCloser(strings.NewReader("")), nil
			},
			func(stream io.ReadCloser) error {
				return io.EOF
			},
			logging.NewLogger("test"),
		)
		go r.Run(ctx)

		require.Eventually(t, func() bool {
			return dials.Load() >= 2
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		r := NewReconnector(
			func(ctx context.Context) (io.ReadCloser, error) {
				return nil, io.ErrUnexpectedEOF
			},
			func(stream io.ReadCloser) error { return nil },
			logging.NewLogger("test"),
		)

		stopped := make(chan struct{})
		go func() {
			r.Run(ctx)
			close(stopped)
		}()

		cancel()
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("Run did not return after cancel")
		}
		assert.Equal(t, StateDisconnected, r.State())
	})
}

func TestConnStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
}

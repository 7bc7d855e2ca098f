package client

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDaemon accepts connections and writes one line per queued payload,
// starting with the configured snapshot.
type fakeDaemon struct {
	listener net.Listener
	snapshot string

	mu    sync.Mutex
	conns []net.Conn
}

func newFakeDaemon(t *testing.T, socketPath, snapshot string) *fakeDaemon {
	t.Helper()
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	f := &fakeDaemon{listener: listener, snapshot: snapshot}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			f.mu.Lock()
			f.conns = append(f.conns, conn)
			snapshot := f.snapshot
			f.mu.Unlock()
			_, _ = conn.Write([]byte(snapshot + "\n"))
		}
	}()
	t.Cleanup(func() { _ = listener.Close() })
	return f
}

func (f *fakeDaemon) push(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		_, _ = conn.Write([]byte(line + "\n"))
	}
}

func (f *fakeDaemon) dropClients() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		_ = conn.Close()
	}
	f.conns = nil
}

func (f *fakeDaemon) setSnapshot(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = s
}

func TestDialAndNext(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	daemon := newFakeDaemon(t, socketPath, `{"value":"snap"}`)

	conn, err := DialPath(socketPath)
	require.NoError(t, err)
	defer conn.Close()

	line, err := conn.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"value":"snap"}`, string(line))

	daemon.push(`{"value":"update"}`)

	var payload struct {
		Value string `json:"value"`
	}
	require.NoError(t, conn.NextInto(&payload))
	assert.Equal(t, "update", payload.Value)
}

func TestDialPathMissingSocket(t *testing.T) {
	_, err := DialPath(filepath.Join(t.TempDir(), "absent.sock"))
	assert.Error(t, err)
}

func TestStreamReconnects(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	daemon := newFakeDaemon(t, socketPath, "snap-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := Stream(ctx, "test", StreamOptions{
		SocketPath:  socketPath,
		MaxInterval: 200 * time.Millisecond,
	})

	require.Equal(t, "snap-1", string(<-lines))

	// Sever the connection. The stream must redial and deliver the fresh
	// snapshot first.
	daemon.setSnapshot("snap-2")
	daemon.dropClients()

	select {
	case line := <-lines:
		assert.Equal(t, "snap-2", string(line))
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not reconnect")
	}
}

func TestStreamStopsOnCancel(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	newFakeDaemon(t, socketPath, "snap")

	ctx, cancel := context.WithCancel(context.Background())
	lines := Stream(ctx, "test", StreamOptions{SocketPath: socketPath})

	require.Equal(t, "snap", string(<-lines))
	cancel()

	select {
	case _, open := <-lines:
		assert.False(t, open, "channel should close after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}

func TestStreamWaitsForDaemon(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "late.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := Stream(ctx, "test", StreamOptions{
		SocketPath:  socketPath,
		MaxInterval: 100 * time.Millisecond,
	})

	// Socket appears only after the stream already started dialing.
	time.Sleep(300 * time.Millisecond)
	newFakeDaemon(t, socketPath, "finally")

	select {
	case line := <-lines:
		assert.Equal(t, "finally", string(line))
	case <-time.After(5 * time.Second):
		t.Fatal("stream never connected")
	}
}

package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatebar/slate/logging"
)

type testSnapshot struct {
	Value string `json:"value"`
}

func startTestServer(t *testing.T, snapshot func() interface{}) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "test.sock")

	srv := New("test", snapshot, logging.NewLogger("test"))
	require.NoError(t, srv.Listen(socketPath))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Serve(ctx) }()
	t.Cleanup(srv.Close)

	return srv, socketPath
}

func readLine(t *testing.T, r *bufio.Reader) testSnapshot {
	t.Helper()
	line, err := r.ReadBytes('\n')
	require.NoError(t, err)
	var snap testSnapshot
	require.NoError(t, json.Unmarshal(line, &snap))
	return snap
}

func TestServerSnapshotOnConnect(t *testing.T) {
	_, socketPath := startTestServer(t, func() interface{} {
		return testSnapshot{Value: "initial"}
	})

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	snap := readLine(t, bufio.NewReader(conn))
	assert.Equal(t, "initial", snap.Value)
}

func TestServerBroadcast(t *testing.T) {
	srv, socketPath := startTestServer(t, func() interface{} {
		return testSnapshot{Value: "initial"}
	})

	connA, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer connA.Close()
	readerA := bufio.NewReader(connA)

	connB, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer connB.Close()
	readerB := bufio.NewReader(connB)

	// Both clients must have their snapshot before the update fires, or
	// the registry may not contain them yet.
	readLine(t, readerA)
	readLine(t, readerB)

	srv.Broadcast(testSnapshot{Value: "changed"})

	assert.Equal(t, "changed", readLine(t, readerA).Value)
	assert.Equal(t, "changed", readLine(t, readerB).Value)
}

func TestServerClientIsolation(t *testing.T) {
	srv, socketPath := startTestServer(t, func() interface{} {
		return testSnapshot{Value: "initial"}
	})

	connA, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	readerA := bufio.NewReader(connA)
	readLine(t, readerA)

	connB, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer connB.Close()
	readerB := bufio.NewReader(connB)
	readLine(t, readerB)

	// Kill the first client, then give the server a moment to notice.
	require.NoError(t, connA.Close())
	time.Sleep(50 * time.Millisecond)

	srv.Broadcast(testSnapshot{Value: "after-disconnect"})
	assert.Equal(t, "after-disconnect", readLine(t, readerB).Value)
}

func TestServerLateSubscriberMissesNothingCurrent(t *testing.T) {
	current := "v1"
	srv, socketPath := startTestServer(t, func() interface{} {
		return testSnapshot{Value: current}
	})

	current = "v2"
	srv.Broadcast(testSnapshot{Value: "v2"})

	// A client connecting now gets the current state, not history.
	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, "v2", readLine(t, bufio.NewReader(conn)).Value)
}

func TestServerClose(t *testing.T) {
	srv, socketPath := startTestServer(t, func() interface{} {
		return testSnapshot{}
	})

	srv.Close()
	_, err := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket file should be unlinked")

	// Idempotent.
	srv.Close()
}

func TestServerStaleSocketRemoval(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "stale.sock")
	require.NoError(t, os.WriteFile(socketPath, nil, 0600))

	srv := New("test", func() interface{} { return testSnapshot{} }, logging.NewLogger("test"))
	require.NoError(t, srv.Listen(socketPath))
	srv.Close()
}

func TestServerSocketPermissions(t *testing.T) {
	_, socketPath := startTestServer(t, func() interface{} {
		return testSnapshot{}
	})

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

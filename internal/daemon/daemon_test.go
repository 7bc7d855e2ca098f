package daemon

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

	"github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/internal/daemon/collector"
	"github.com/slatebar/slate/internal/daemon/store"
	"github.com/slatebar/slate/logging"
	"github.com/slatebar/slate/pkg/models"
	"github.com/slatebar/slate/testutil"
)

// tickCollector applies a fixed sequence of snapshots when triggered.
type tickCollector struct {
	store   *store.Store[models.TimeInfo]
	trigger chan models.TimeInfo
}

func (c *tickCollector) Name() string { return "tick" }

func (c *tickCollector) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-c.trigger:
			c.store.Apply(snap)
		}
	}
}

func newTestDaemon(t *testing.T) (*Daemon[models.TimeInfo], *tickCollector, string, string) {
	t.Helper()
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "time.sock")
	lockPath := filepath.Join(dir, "time.lock")

	st := store.New(models.TimeInfo{TimeStr: "10:00"})
	tick := &tickCollector{store: st, trigger: make(chan models.TimeInfo)}

	d := New("time", socketPath, lockPath, st, []collector.Collector{tick}, logging.NewLogger("test"))
	return d, tick, socketPath, lockPath
}

func TestDaemonServesSnapshotsAndChanges(t *testing.T) {
	d, tick, socketPath, _ := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	testutil.WaitForSocket(t, socketPath, 2*time.Second)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Full snapshot first.
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var snap models.TimeInfo
	require.NoError(t, json.Unmarshal(line, &snap))
	assert.Equal(t, "10:00", snap.TimeStr)

	// A collector-driven change is pushed as one more line.
	tick.trigger <- models.TimeInfo{TimeStr: "10:01"}
	line, err = reader.ReadBytes('\n')
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(line, &snap))
	assert.Equal(t, "10:01", snap.TimeStr)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemonSecondInstanceRefused(t *testing.T) {
	d, _, socketPath, lockPath := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()
	testutil.WaitForSocket(t, socketPath, 2*time.Second)

	st := store.New(models.TimeInfo{})
	second := New("time", socketPath, lockPath, st, nil, logging.NewLogger("test"))

	err := second.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyRunning))
}

func TestDaemonCleansUpOnShutdown(t *testing.T) {
	d, _, socketPath, lockPath := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	testutil.WaitForSocket(t, socketPath, 2*time.Second)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	_, err := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket should be unlinked")
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "lock should be removed")
}

func TestDaemonRecoversFromStaleArtifacts(t *testing.T) {
	d, _, socketPath, lockPath := newTestDaemon(t)

	// Leftovers from a crashed instance: files exist, nobody serves them.
	require.NoError(t, os.WriteFile(socketPath, nil, 0600))
	require.NoError(t, os.WriteFile(lockPath, []byte("99999"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	testutil.WaitForSocket(t, socketPath, 2*time.Second)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

// Package daemon assembles a slate daemon: collectors feeding a snapshot
// store, a broadcast server pushing changes to clients, and the
// single-instance machinery around both.
package daemon

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/internal/daemon/collector"
	"github.com/slatebar/slate/internal/daemon/lockfile"
	"github.com/slatebar/slate/internal/daemon/server"
	"github.com/slatebar/slate/internal/daemon/store"
)

const probeTimeout = 500 * time.Millisecond

// Runner is one startable daemon, as seen by the CLI layer.
type Runner interface {
	// Run blocks until ctx is cancelled or the daemon fails. Returns an
	// ErrCodeAlreadyRunning error when a live instance already serves the
	// socket.
	Run(ctx context.Context) error
}

// Daemon supervises one snapshot store of type T, its collectors, and its
// broadcast server.
type Daemon[T store.Snapshot[T]] struct {
	name       string
	socketPath string
	lockPath   string
	store      *store.Store[T]
	collectors []collector.Collector
	logger     *logrus.Entry
}

func New[T store.Snapshot[T]](name, socketPath, lockPath string, st *store.Store[T], collectors []collector.Collector, logger *logrus.Entry) *Daemon[T] {
	return &Daemon[T]{
		name:       name,
		socketPath: socketPath,
		lockPath:   lockPath,
		store:      st,
		collectors: collectors,
		logger:     logger,
	}
}

// Run acquires the instance lock, binds the socket, and drives collectors
// and the broadcast pump until ctx is cancelled. All runtime artifacts are
// removed on the way out, so repeated shutdown paths stay idempotent.
func (d *Daemon[T]) Run(ctx context.Context) error {
	lock, err := d.acquireLock()
	if err != nil {
		return err
	}
	defer lock.Release()

	srv := server.New(d.name, func() interface{} { return d.store.Get() }, d.logger)
	if err := srv.Listen(d.socketPath); err != nil {
		return errors.SocketBind(d.socketPath, err)
	}
	defer srv.Close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return srv.Serve(ctx)
	})

	// Pump store changes into the broadcaster.
	updates := d.store.Subscribe()
	group.Go(func() error {
		defer d.store.Unsubscribe(updates)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snapshot := <-updates:
				srv.Broadcast(snapshot)
			}
		}
	})

	for _, c := range d.collectors {
		c := c
		group.Go(func() error {
			d.logger.WithField("collector", c.Name()).Debug("Collector started")
			return c.Run(ctx)
		})
	}

	d.logger.WithField("daemon", d.name).Info("Daemon running")
	err = group.Wait()
	if err == context.Canceled || ctx.Err() != nil {
		d.logger.WithField("daemon", d.name).Info("Daemon stopped")
		return nil
	}
	return err
}

// acquireLock takes the advisory lock, handling the stale-leftover case: a
// held lock whose socket no one answers means a previous instance died
// uncleanly, so the leftovers are cleared and acquisition retried once.
func (d *Daemon[T]) acquireLock() (*lockfile.Lock, error) {
	lock, err := lockfile.Acquire(d.lockPath)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, errors.ErrCodeLockHeld) {
		return nil, err
	}

	if lockfile.ProbeSocket(d.socketPath, probeTimeout) {
		return nil, errors.AlreadyRunning(d.name, d.socketPath)
	}

	d.logger.WithField("daemon", d.name).Warn("Removing stale lock and socket from a dead instance")
	_ = os.Remove(d.socketPath)
	_ = os.Remove(d.lockPath)

	lock, err = lockfile.Acquire(d.lockPath)
	if err != nil {
		if errors.Is(err, errors.ErrCodeLockHeld) {
			// Lost the race to another starting instance.
			return nil, errors.AlreadyRunning(d.name, d.socketPath)
		}
		return nil, err
	}
	return lock, nil
}

package collector

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/slatebar/slate/internal/daemon/store"
	"github.com/slatebar/slate/pkg/models"
)

// Clock produces a TimeInfo snapshot once per minute, aligned to the
// minute boundary so a displayed clock never lags wall time.
type Clock struct {
	store  *store.Store[models.TimeInfo]
	clock  clockwork.Clock
	logger *logrus.Entry
}

func NewClock(st *store.Store[models.TimeInfo], clock clockwork.Clock, logger *logrus.Entry) *Clock {
	return &Clock{store: st, clock: clock, logger: logger}
}

func (c *Clock) Name() string { return "clock" }

// Run publishes the current minute immediately, then sleeps to each
// following minute boundary. The store's equality check suppresses the
// no-op update after a sub-minute wakeup.
func (c *Clock) Run(ctx context.Context) error {
	c.store.Apply(models.NewTimeInfo(c.clock.Now()))

	for {
		now := c.clock.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)
		timer := c.clock.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}

		if c.store.Apply(models.NewTimeInfo(c.clock.Now())) {
			c.logger.Debug("Minute rolled over")
		}
	}
}

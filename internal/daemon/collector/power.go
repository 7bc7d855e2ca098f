package collector

import (
	"context"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/slatebar/slate/internal/daemon/store"
	"github.com/slatebar/slate/internal/sysfs"
	"github.com/slatebar/slate/pkg/models"
)

// Power feeds battery and backlight fields into the metrics snapshot. It
// reacts to sysfs attribute change events, with a timer fallback for
// kernels that never emit them. Battery reads are rate-limited; backlight
// reads are cheap and always fresh.
type Power struct {
	store          *store.Store[models.MetricsState]
	battery        *sysfs.Battery
	backlight      *sysfs.Backlight
	refreshEvery   time.Duration
	logger         *logrus.Entry
	lastBatteryAt  time.Time
	newWatcher     func() (*fsnotify.Watcher, error)
}

func NewPower(st *store.Store[models.MetricsState], battery *sysfs.Battery, backlight *sysfs.Backlight, refreshEvery time.Duration, logger *logrus.Entry) *Power {
	return &Power{
		store:        st,
		battery:      battery,
		backlight:    backlight,
		refreshEvery: refreshEvery,
		logger:       logger,
		newWatcher:   fsnotify.NewWatcher,
	}
}

func (p *Power) Name() string { return "power" }

func (p *Power) Run(ctx context.Context) error {
	p.Refresh(true)

	watcher, err := p.newWatcher()
	if err != nil {
		p.logger.WithError(err).Warn("Inotify unavailable, falling back to timer only")
		return p.runTimerOnly(ctx)
	}
	defer watcher.Close()

	for _, path := range p.watchTargets() {
		if err := watcher.Add(path); err != nil {
			p.logger.WithField("path", path).WithError(err).Debug("Watch failed")
		}
	}

	// Fallback refresh when no attribute change fires for a full interval.
	idle := time.NewTimer(p.refreshEvery)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return p.runTimerOnly(ctx)
			}
			p.Refresh(p.isBatteryPath(event.Name))
			resetTimer(idle, p.refreshEvery)
		case err, ok := <-watcher.Errors:
			if !ok {
				return p.runTimerOnly(ctx)
			}
			p.logger.WithError(err).Debug("Watcher error")
		case <-idle.C:
			p.Refresh(true)
			idle.Reset(p.refreshEvery)
		}
	}
}

func (p *Power) runTimerOnly(ctx context.Context) error {
	ticker := time.NewTicker(p.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh(true)
		}
	}
}

func (p *Power) watchTargets() []string {
	var targets []string
	if p.battery != nil {
		targets = append(targets, p.battery.WatchPaths()...)
	}
	if p.backlight != nil {
		targets = append(targets, p.backlight.WatchPaths()...)
	}
	return targets
}

func (p *Power) isBatteryPath(path string) bool {
	return p.battery != nil && strings.HasPrefix(path, p.battery.Dir)
}

// Refresh re-reads hardware state and merges it into the snapshot. The
// backlight is read on every call; the battery only when forced or when
// the rate-limit window has elapsed, since some firmware makes capacity
// reads expensive.
func (p *Power) Refresh(forced bool) {
	var backlightPct *int
	if p.backlight != nil {
		if pct, ok := p.backlight.Percentage(); ok {
			backlightPct = &pct
		}
	}

	readBattery := p.battery != nil && (forced || time.Since(p.lastBatteryAt) >= p.refreshEvery)

	var batteryPct, batteryTime *int
	var charging bool
	if readBattery {
		p.lastBatteryAt = time.Now()
		if pct, ok := p.battery.Percentage(); ok {
			batteryPct = &pct
		}
		if status, ok := p.battery.Status(); ok {
			charging = sysfs.ParseStatus(status) == sysfs.StateCharging
		}
		if secs := p.battery.TimeRemaining(charging); secs != nil {
			v := int(*secs)
			batteryTime = &v
		}
	}

	p.store.Update(func(prev models.MetricsState) models.MetricsState {
		next := prev
		next.BacklightPercentage = backlightPct
		if readBattery {
			next.BatteryPercentage = batteryPct
			next.IsCharging = charging
			next.BatteryTimeRemaining = batteryTime
		}
		return next
	})
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

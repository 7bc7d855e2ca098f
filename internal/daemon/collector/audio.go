package collector

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/slatebar/slate/internal/daemon/store"
	"github.com/slatebar/slate/internal/mixer"
	"github.com/slatebar/slate/pkg/models"
)

// Defaults published when no audio server answers, so consumers always
// have something renderable.
const placeholderVolume = 70

// Audio feeds volume and mute fields into the metrics snapshot from a
// mixer monitor's change events.
type Audio struct {
	store   *store.Store[models.MetricsState]
	monitor mixer.Monitor
	logger  *logrus.Entry
}

func NewAudio(st *store.Store[models.MetricsState], monitor mixer.Monitor, logger *logrus.Entry) *Audio {
	return &Audio{store: st, monitor: monitor, logger: logger}
}

func (a *Audio) Name() string { return "audio" }

func (a *Audio) Run(ctx context.Context) error {
	defer a.monitor.Close()

	a.refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-a.monitor.Events():
			if !ok {
				return nil
			}
			a.refresh()
		}
	}
}

// refresh queries the mixer and merges whatever attributes it could read.
// When nothing is readable and no prior value exists, placeholder values
// are published instead of nulls.
func (a *Audio) refresh() {
	state, err := a.monitor.State()
	if err != nil {
		a.logger.WithError(err).Debug("Mixer query failed")
	}

	a.store.Update(func(prev models.MetricsState) models.MetricsState {
		next := prev
		if state.Volume != nil {
			next.VolumePercentage = state.Volume
		}
		if state.SpeakerMuted != nil {
			next.SpeakerMuted = state.SpeakerMuted
		}
		if state.MicMuted != nil {
			next.MicMuted = state.MicMuted
		}
		if next.VolumePercentage == nil {
			next.VolumePercentage = models.Int(placeholderVolume)
		}
		if next.SpeakerMuted == nil {
			next.SpeakerMuted = models.Bool(false)
		}
		if next.MicMuted == nil {
			next.MicMuted = models.Bool(false)
		}
		return next
	})
}

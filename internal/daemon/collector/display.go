package collector

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slatebar/slate/internal/daemon/store"
	"github.com/slatebar/slate/internal/hypr"
	"github.com/slatebar/slate/pkg/models"
)

// Placeholder windows published when the compositor cannot answer.
var (
	desktopWindow = models.ActiveWindow{Title: "Hyprland, ArchLinux"}
	x11Window     = models.ActiveWindow{Title: "Desktop (X11)"}
)

// Display polls the compositor for the focused window and workspace list.
// Hyprland has no change-notification for everything we need, so this is
// a fixed-interval poll; the store's equality check keeps the socket quiet
// between real changes.
type Display struct {
	store    *store.Store[models.DisplayState]
	client   *hypr.Client
	interval time.Duration
	logger   *logrus.Entry
}

func NewDisplay(st *store.Store[models.DisplayState], client *hypr.Client, interval time.Duration, logger *logrus.Entry) *Display {
	return &Display{store: st, client: client, interval: interval, logger: logger}
}

func (d *Display) Name() string { return "display" }

func (d *Display) Run(ctx context.Context) error {
	d.store.Apply(d.observe())

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.store.Apply(d.observe())
		}
	}
}

// observe builds a full DisplayState from the compositor. Query failures
// degrade field-by-field: an empty window becomes the desktop placeholder,
// missing workspace data keeps an empty list rather than poisoning the
// whole snapshot.
func (d *Display) observe() models.DisplayState {
	if !d.client.Available() {
		return models.DisplayState{ActiveWindow: x11Window, Workspaces: []models.Workspace{}}
	}

	state := models.DisplayState{Workspaces: []models.Workspace{}}

	window, err := d.client.ActiveWindow()
	if err != nil || window.Title == "" {
		state.ActiveWindow = desktopWindow
	} else {
		state.ActiveWindow = window
	}

	if workspaces, err := d.client.Workspaces(); err == nil {
		state.Workspaces = workspaces
	} else {
		d.logger.WithError(err).Debug("Workspace query failed")
	}

	if id, err := d.client.ActiveWorkspaceID(); err == nil {
		state.ActiveWorkspaceID = id
	}

	return state
}

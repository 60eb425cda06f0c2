package dispatch

import (
	"context"

	"github.com/wallkit/wallkit/internal/ipc"
)

// PlasmaApplier shells out to plasma-apply-wallpaperimage on KDE. Plasma
// offers no per-monitor targeting or transitions through that tool, so the
// wallpaper changes everywhere at once.
type PlasmaApplier struct {
	Runner ipc.Runner
}

func (a *PlasmaApplier) Name() string { return "plasma" }

func (a *PlasmaApplier) Capabilities() Capabilities {
	return Capabilities{PerMonitor: false, Transitions: false}
}

func (a *PlasmaApplier) Apply(ctx context.Context, req Request) error {
	if _, err := a.Runner.Run(ctx, "plasma-apply-wallpaperimage", req.Path); err != nil {
		return wrapRunError(req.Monitor, err)
	}
	return nil
}

var _ Applier = (*PlasmaApplier)(nil)

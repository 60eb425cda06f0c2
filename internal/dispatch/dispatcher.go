package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/report"
	"github.com/wallkit/wallkit/internal/resolve"
	"github.com/wallkit/wallkit/internal/util"
)

// PointerWriter persists confirmed applies. *store.Store satisfies it.
type PointerWriter interface {
	SetPointer(ctx context.Context, monitor, path string) error
}

// GlobalPointerName mirrors store.GlobalPointer without importing it here.
const GlobalPointerName = "global"

// Dispatcher routes apply requests to the backend registered for the
// running compositor and records pointers after confirmed applies.
type Dispatcher struct {
	appliers   map[compositor.Kind]Applier
	pointers   PointerWriter
	logger     *util.Logger
	runner     ipc.Runner
	Transition Transition
}

// NewDispatcher wires the default backend table. Sway falls back to swaybg
// when swww is not installed; everything wlroots-shaped prefers swww.
func NewDispatcher(runner ipc.Runner, pointers PointerWriter, logger *util.Logger) *Dispatcher {
	swww := &SwwwApplier{Runner: runner}
	var sway Applier = swww
	if !ipc.Available("swww") && ipc.Available("swaybg") {
		sway = NewSwaybgApplier()
	}
	return &Dispatcher{
		runner:   runner,
		pointers: pointers,
		logger:   logger,
		appliers: map[compositor.Kind]Applier{
			compositor.Hyprland: swww,
			compositor.Niri:     swww,
			compositor.Labwc:    swww,
			compositor.Sway:     sway,
			compositor.KDE:      &PlasmaApplier{Runner: runner},
			compositor.Unknown:  ManualApplier{},
		},
	}
}

// Register overrides the applier for a kind.
func (d *Dispatcher) Register(kind compositor.Kind, a Applier) {
	d.appliers[kind] = a
}

// ApplierFor returns the backend serving a compositor kind.
func (d *Dispatcher) ApplierFor(kind compositor.Kind) Applier {
	if a, ok := d.appliers[kind]; ok {
		return a
	}
	return ManualApplier{}
}

// Apply pushes one wallpaper and, on success, records the monitor pointer
// plus the global mirror. Pointer write failures are logged, not returned:
// the wallpaper did change.
func (d *Dispatcher) Apply(ctx context.Context, kind compositor.Kind, req Request) error {
	applier := d.ApplierFor(kind)
	if _, ok := applier.(*SwwwApplier); ok && d.runner != nil {
		if err := EnsureSwwwDaemon(ctx, d.runner); err != nil && d.logger != nil {
			d.logger.Warnf("swww daemon not reachable: %v", err)
		}
	}
	if req.Transition == (Transition{}) {
		req.Transition = d.Transition
	}
	if err := applier.Apply(ctx, req); err != nil {
		return err
	}
	d.recordPointer(ctx, req.Monitor, req.Path)
	return nil
}

func (d *Dispatcher) recordPointer(ctx context.Context, monitor, path string) {
	if d.pointers == nil {
		return
	}
	if monitor != "" {
		if err := d.pointers.SetPointer(ctx, monitor, path); err != nil && d.logger != nil {
			d.logger.Warnf("record pointer for %s: %v", monitor, err)
		}
	}
	if err := d.pointers.SetPointer(ctx, GlobalPointerName, path); err != nil && d.logger != nil {
		d.logger.Warnf("record global pointer: %v", err)
	}
}

// Sync applies the resolved wallpaper of every monitor in the snapshot,
// one goroutine per monitor, and records outcomes in the batch. Backends
// without per-monitor targeting apply the focused monitor's wallpaper once.
func (d *Dispatcher) Sync(ctx context.Context, kind compositor.Kind, snap output.Snapshot, effs map[string]resolve.Effective, batch *report.Batch) {
	applier := d.ApplierFor(kind)
	if !applier.Capabilities().PerMonitor {
		d.syncGlobal(ctx, kind, snap, effs, batch)
		return
	}
	var wg sync.WaitGroup
	for _, m := range snap.Monitors {
		eff, ok := effs[m.Name]
		if !ok || eff.Tier == resolve.TierNone {
			batch.Skipped(m.Name, "no assignment")
			continue
		}
		wg.Add(1)
		go func(monitor string, eff resolve.Effective) {
			defer wg.Done()
			start := time.Now()
			req := Request{Monitor: monitor, Path: eff.Assignment.Path, Mode: eff.Assignment.Mode}
			if err := d.Apply(ctx, kind, req); err != nil {
				batch.Failed(monitor, eff.Assignment.Path, err)
				return
			}
			batch.Applied(monitor, eff.Assignment.Path, string(eff.Tier), time.Since(start))
		}(m.Name, eff)
	}
	wg.Wait()
}

func (d *Dispatcher) syncGlobal(ctx context.Context, kind compositor.Kind, snap output.Snapshot, effs map[string]resolve.Effective, batch *report.Batch) {
	target, ok := snap.FocusedMonitor()
	if !ok {
		return
	}
	eff := effs[target.Name]
	if eff.Tier == resolve.TierNone {
		for _, m := range snap.Monitors {
			batch.Skipped(m.Name, "no assignment")
		}
		return
	}
	start := time.Now()
	req := Request{Monitor: target.Name, Path: eff.Assignment.Path, Mode: eff.Assignment.Mode}
	err := d.Apply(ctx, kind, req)
	for _, m := range snap.Monitors {
		switch {
		case err != nil && m.Name == target.Name:
			batch.Failed(m.Name, eff.Assignment.Path, err)
		case err != nil:
			batch.Skipped(m.Name, "global apply failed")
		case m.Name == target.Name:
			batch.Applied(m.Name, eff.Assignment.Path, string(eff.Tier), time.Since(start))
		default:
			batch.Skipped(m.Name, "backend applies globally")
		}
	}
}

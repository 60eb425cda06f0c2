// Package daemon keeps resolved wallpapers applied while the session runs:
// it re-applies on workspace switches, monitor hotplug, and external edits
// to the state or wallpaper directory, and answers control socket requests.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/config"
	"github.com/wallkit/wallkit/internal/control"
	"github.com/wallkit/wallkit/internal/cycle"
	"github.com/wallkit/wallkit/internal/dispatch"
	"github.com/wallkit/wallkit/internal/ipc"
	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/report"
	"github.com/wallkit/wallkit/internal/resolve"
	"github.com/wallkit/wallkit/internal/store"
	"github.com/wallkit/wallkit/internal/util"
)

// Options wires the daemon's collaborators.
type Options struct {
	Config     *config.Config
	Kind       compositor.Kind
	Store      *store.Store
	Registry   *output.Registry
	Resolver   *resolve.Resolver
	Dispatcher *dispatch.Dispatcher
	Controller *cycle.Controller
	Logger     *util.Logger
	SocketPath string
}

// Daemon owns the long-running apply loop.
type Daemon struct {
	cfg        *config.Config
	kind       compositor.Kind
	store      *store.Store
	registry   *output.Registry
	resolver   *resolve.Resolver
	dispatcher *dispatch.Dispatcher
	controller *cycle.Controller
	logger     *util.Logger
	socketPath string
	started    time.Time

	mu       sync.Mutex
	lastSnap output.Snapshot
	lastEffs map[string]resolve.Effective

	// selfWriteAt is the unix-nano time of the daemon's latest assignment
	// write, used to keep its own writes from re-triggering the watcher.
	selfWriteAt atomic.Int64
}

// New builds a daemon from its collaborators.
func New(opts Options) *Daemon {
	return &Daemon{
		cfg:        opts.Config,
		kind:       opts.Kind,
		store:      opts.Store,
		registry:   opts.Registry,
		resolver:   opts.Resolver,
		dispatcher: opts.Dispatcher,
		controller: opts.Controller,
		logger:     opts.Logger,
		socketPath: opts.SocketPath,
	}
}

// Run applies the current state once, then serves until the context is
// cancelled. Reapplies are triggered by compositor events, filesystem
// changes, and control requests; all of them funnel through one channel so
// applies never overlap.
func (d *Daemon) Run(ctx context.Context) error {
	d.started = time.Now()

	if _, err := d.Reapply(ctx); err != nil {
		d.logger.Warnf("initial apply: %v", err)
	}

	srv, err := control.NewServer(d.socketPath, d, d.logger)
	if err != nil {
		return fmt.Errorf("control server: %w", err)
	}
	serverErrs := make(chan error, 1)
	go func() {
		serverErrs <- srv.Serve(ctx)
	}()

	applyRequests := make(chan string, 1)
	go d.watchFilesystem(ctx, applyRequests)
	if d.kind == compositor.Hyprland {
		go d.watchCompositorEvents(ctx, applyRequests)
	} else {
		d.logger.Debugf("no event stream on %s, relying on filesystem watches", d.kind)
	}

	for {
		select {
		case <-ctx.Done():
			return <-serverErrs
		case err := <-serverErrs:
			return err
		case reason := <-applyRequests:
			d.logger.Debugf("%s, reapplying", reason)
			if _, err := d.Reapply(ctx); err != nil {
				d.logger.Errorf("reapply: %v", err)
			}
		}
	}
}

// watchCompositorEvents reapplies on the Hyprland events that change which
// wallpaper should be visible.
func (d *Daemon) watchCompositorEvents(ctx context.Context, applyRequests chan<- string) {
	events, err := ipc.Subscribe(ctx, d.logger)
	if err != nil {
		d.logger.Warnf("event subscription unavailable: %v", err)
		return
	}
	relevant := map[string]struct{}{
		"workspace":      {},
		"focusedmon":     {},
		"monitoradded":   {},
		"monitorremoved": {},
	}
	debounced := newDebouncer(debounceWindow, func() {
		requestApply(applyRequests, "compositor event")
	})
	defer debounced.stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, ok := relevant[ev.Kind]; ok {
				debounced.trigger()
			}
		case <-ctx.Done():
			return
		}
	}
}

func requestApply(applyRequests chan<- string, reason string) {
	select {
	case applyRequests <- reason:
	default:
	}
}

// Reapply resolves and pushes the wallpaper for every monitor. Part of the
// control surface and the internal trigger path.
func (d *Daemon) Reapply(ctx context.Context) (control.BatchPayload, error) {
	snap, err := d.registry.Snapshot(ctx, d.kind)
	if err != nil {
		return control.BatchPayload{}, err
	}
	assignments, err := d.store.Assignments()
	if err != nil {
		d.logger.Warnf("reading assignments: %v", err)
	}
	effs := d.resolver.ForSnapshot(assignments, snap)

	batch := report.NewBatch()
	d.dispatcher.Sync(ctx, d.kind, snap, effs, batch)

	d.mu.Lock()
	d.lastSnap = snap
	d.lastEffs = effs
	d.mu.Unlock()

	return control.BatchPayload{Outcomes: batch.Outcomes(), Totals: batch.Totals()}, nil
}

// Status reports the daemon's last applied state without re-querying the
// compositor.
func (d *Daemon) Status(ctx context.Context) (control.StatusPayload, error) {
	d.mu.Lock()
	snap := d.lastSnap
	effs := d.lastEffs
	d.mu.Unlock()

	payload := control.StatusPayload{
		Compositor: d.kind.String(),
		Started:    d.started,
	}
	for _, m := range snap.Monitors {
		ms := control.MonitorStatus{Name: m.Name, Workspace: m.ActiveWorkspace}
		if eff, ok := effs[m.Name]; ok && eff.Tier != resolve.TierNone {
			ms.Path = eff.Assignment.Path
			ms.Tier = string(eff.Tier)
		}
		if p, ok, err := d.store.Pointer(m.Name); err == nil && ok {
			ms.AppliedAt = p.AppliedAt
		}
		payload.Monitors = append(payload.Monitors, ms)
	}
	return payload, nil
}

// Cycle serves next/prev/random over the control socket. An empty monitor
// targets the focused one.
func (d *Daemon) Cycle(ctx context.Context, action, monitor string) (control.CyclePayload, error) {
	snap, err := d.registry.Snapshot(ctx, d.kind)
	if err != nil {
		return control.CyclePayload{}, err
	}
	if monitor == "" {
		m, ok := snap.FocusedMonitor()
		if !ok {
			return control.CyclePayload{}, fmt.Errorf("no monitors connected")
		}
		monitor = m.Name
	}
	target := cycle.Target{Monitor: monitor}
	if d.cfg.PerWorkspace {
		if m, ok := snap.MonitorByName(monitor); ok {
			target.Workspace = m.ActiveWorkspace
		}
	}
	var path string
	switch action {
	case control.ActionNext:
		path, err = d.controller.Next(ctx, d.kind, target)
	case control.ActionPrev:
		path, err = d.controller.Prev(ctx, d.kind, target)
	case control.ActionRandom:
		path, err = d.controller.Random(ctx, d.kind, target)
	default:
		err = fmt.Errorf("unknown cycle action %q", action)
	}
	// The controller writes the assignment even when the apply fails.
	d.noteSelfWrite()
	if err != nil {
		return control.CyclePayload{}, err
	}
	return control.CyclePayload{Monitor: monitor, Path: path}, nil
}

var _ control.Handler = (*Daemon)(nil)

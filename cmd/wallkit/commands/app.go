package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/config"
	"github.com/wallkit/wallkit/internal/cycle"
	"github.com/wallkit/wallkit/internal/dispatch"
	"github.com/wallkit/wallkit/internal/ipc"
	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/resolve"
	"github.com/wallkit/wallkit/internal/store"
	"github.com/wallkit/wallkit/internal/util"
)

// app bundles the wired collaborators every subcommand needs.
type app struct {
	cfg        *config.Config
	logger     *util.Logger
	kind       compositor.Kind
	store      *store.Store
	registry   *output.Registry
	resolver   *resolve.Resolver
	dispatcher *dispatch.Dispatcher
	controller *cycle.Controller
	errOut     io.Writer
}

func buildApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger := util.NewLogger(util.ParseLogLevel(cfg.LogLevel))

	kind := compositor.Detect()
	if cfg.Compositor != "" {
		if k, ok := compositor.ParseKind(cfg.Compositor); ok {
			kind = k
		}
	}
	logger.Debugf("compositor: %s", kind)

	st, err := store.Open(cfg.StateDir, cfg.LockTimeout, logger)
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.NewDispatcher(ipc.NewExecRunner(cfg.ApplyTimeout), st, logger)
	dispatcher.Transition = dispatch.Transition{
		Type:     cfg.Transition.Type,
		FPS:      cfg.Transition.FPS,
		Duration: cfg.Transition.Duration,
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		kind:       kind,
		store:      st,
		registry:   output.NewRegistry(ipc.NewExecRunner(cfg.QueryTimeout)),
		resolver:   &resolve.Resolver{},
		dispatcher: dispatcher,
		controller: &cycle.Controller{Dir: cfg.WallpaperDir, Mode: cfg.Mode, State: st, Backend: dispatcher},
		errOut:     os.Stderr,
	}, nil
}

// snapshot queries the registry and, when the compositor has no query or
// apply support at all, prints the manual instructions so the user is not
// left with a bare error.
func (a *app) snapshot(ctx context.Context) (output.Snapshot, error) {
	snap, err := a.registry.Snapshot(ctx, a.kind)
	if err != nil {
		var qe *output.QueryError
		if errors.As(err, &qe) && qe.Unsupported {
			if m, ok := a.dispatcher.ApplierFor(a.kind).(interface{ Instructions() string }); ok {
				fmt.Fprintln(a.errOut, m.Instructions())
			}
		}
	}
	return snap, err
}

// targets picks the monitors a navigation command acts on: an explicit
// monitor flag, otherwise the focused monitor, or every monitor when
// cycle_target is "all". Workspace mode attaches the active workspace.
func (a *app) targets(ctx context.Context, monitorFlag string) ([]cycle.Target, output.Snapshot, error) {
	snap, err := a.snapshot(ctx)
	if err != nil {
		return nil, output.Snapshot{}, err
	}
	var monitors []output.Monitor
	switch {
	case monitorFlag != "":
		m, ok := snap.MonitorByName(monitorFlag)
		if !ok {
			return nil, snap, fmt.Errorf("monitor %q is not connected", monitorFlag)
		}
		monitors = []output.Monitor{m}
	case a.cfg.CycleTarget == "all":
		monitors = snap.Monitors
	default:
		m, ok := snap.FocusedMonitor()
		if !ok {
			return nil, snap, fmt.Errorf("no monitors connected")
		}
		monitors = []output.Monitor{m}
	}
	targets := make([]cycle.Target, 0, len(monitors))
	for _, m := range monitors {
		t := cycle.Target{Monitor: m.Name}
		if a.cfg.PerWorkspace {
			t.Workspace = m.ActiveWorkspace
		}
		targets = append(targets, t)
	}
	return targets, snap, nil
}

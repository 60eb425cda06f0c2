package output

import (
	"context"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
)

// Registry maps compositor kinds to their query sources.
type Registry struct {
	sources map[compositor.Kind]Source
}

// NewRegistry wires the default source for every supported compositor.
func NewRegistry(runner ipc.Runner) *Registry {
	return &Registry{sources: map[compositor.Kind]Source{
		compositor.Hyprland: &HyprlandSource{Runner: runner},
		compositor.Niri:     &NiriSource{Runner: runner},
		compositor.Sway:     &SwaySource{Runner: runner},
		compositor.Labwc:    &WlrSource{Runner: runner, Kind: compositor.Labwc},
		compositor.KDE:      &XrandrSource{Runner: runner},
	}}
}

// Register overrides the source for a kind. Used by tests and by callers
// that want a custom query path.
func (r *Registry) Register(kind compositor.Kind, src Source) {
	r.sources[kind] = src
}

// Snapshot queries the source registered for the kind.
func (r *Registry) Snapshot(ctx context.Context, kind compositor.Kind) (Snapshot, error) {
	src, ok := r.sources[kind]
	if !ok {
		return Snapshot{}, &QueryError{Kind: kind, Unsupported: true}
	}
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Kind = kind
	return snap, nil
}

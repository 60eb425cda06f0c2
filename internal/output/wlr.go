package output

import (
	"context"
	"encoding/json"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
)

// WlrSource queries wlr-randr on generic wlroots compositors. These sessions
// expose no workspace query, so snapshots carry monitors only.
type WlrSource struct {
	Runner ipc.Runner
	Kind   compositor.Kind
}

func (s *WlrSource) Snapshot(ctx context.Context) (Snapshot, error) {
	data, err := s.Runner.Run(ctx, "wlr-randr", "--json")
	if err != nil {
		return Snapshot{}, &QueryError{Kind: s.Kind, Err: err}
	}
	var raw []struct {
		Name     string  `json:"name"`
		Enabled  bool    `json:"enabled"`
		Scale    float64 `json:"scale"`
		Position struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"position"`
		Modes []struct {
			Width   int  `json:"width"`
			Height  int  `json:"height"`
			Current bool `json:"current"`
		} `json:"modes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, &QueryError{Kind: s.Kind, Err: err}
	}
	monitors := make([]Monitor, 0, len(raw))
	for _, out := range raw {
		if !out.Enabled {
			continue
		}
		m := Monitor{
			Name:  out.Name,
			X:     out.Position.X,
			Y:     out.Position.Y,
			Scale: out.Scale,
		}
		for _, mode := range out.Modes {
			if mode.Current {
				m.Width = mode.Width
				m.Height = mode.Height
				break
			}
		}
		monitors = append(monitors, m)
	}
	return Snapshot{Monitors: monitors}, nil
}

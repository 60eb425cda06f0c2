package output

import (
	"context"
	"encoding/json"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
)

// SwaySource queries swaymsg's JSON interface.
type SwaySource struct {
	Runner ipc.Runner
}

func (s *SwaySource) Snapshot(ctx context.Context) (Snapshot, error) {
	monitors, err := s.listOutputs(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	workspaces, err := s.listWorkspaces(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Monitors: monitors, Workspaces: workspaces}, nil
}

func (s *SwaySource) listOutputs(ctx context.Context) ([]Monitor, error) {
	data, err := s.Runner.Run(ctx, "swaymsg", "-t", "get_outputs")
	if err != nil {
		return nil, &QueryError{Kind: compositor.Sway, Err: err}
	}
	var raw []struct {
		Name    string  `json:"name"`
		Active  bool    `json:"active"`
		Focused bool    `json:"focused"`
		Scale   float64 `json:"scale"`
		Rect    struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"rect"`
		CurrentWorkspace string `json:"current_workspace"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &QueryError{Kind: compositor.Sway, Err: err}
	}
	monitors := make([]Monitor, 0, len(raw))
	for _, out := range raw {
		if !out.Active {
			continue
		}
		monitors = append(monitors, Monitor{
			Name:            out.Name,
			Width:           out.Rect.Width,
			Height:          out.Rect.Height,
			X:               out.Rect.X,
			Y:               out.Rect.Y,
			Scale:           out.Scale,
			Focused:         out.Focused,
			ActiveWorkspace: out.CurrentWorkspace,
		})
	}
	return monitors, nil
}

func (s *SwaySource) listWorkspaces(ctx context.Context) ([]Workspace, error) {
	data, err := s.Runner.Run(ctx, "swaymsg", "-t", "get_workspaces")
	if err != nil {
		return nil, &QueryError{Kind: compositor.Sway, Err: err}
	}
	var raw []struct {
		Name    string `json:"name"`
		Output  string `json:"output"`
		Visible bool   `json:"visible"`
		Focused bool   `json:"focused"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &QueryError{Kind: compositor.Sway, Err: err}
	}
	workspaces := make([]Workspace, 0, len(raw))
	for _, ws := range raw {
		workspaces = append(workspaces, Workspace{
			ID:      ws.Name,
			Name:    ws.Name,
			Monitor: ws.Output,
			Active:  ws.Visible,
			Focused: ws.Focused,
		})
	}
	return workspaces, nil
}

package output

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
)

// HyprlandSource queries hyprctl's JSON interface.
type HyprlandSource struct {
	Runner ipc.Runner
}

func (s *HyprlandSource) Snapshot(ctx context.Context) (Snapshot, error) {
	monitors, err := s.listMonitors(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	workspaces, err := s.listWorkspaces(ctx, monitors)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Monitors: monitors, Workspaces: workspaces}, nil
}

func (s *HyprlandSource) listMonitors(ctx context.Context) ([]Monitor, error) {
	data, err := s.Runner.Run(ctx, "hyprctl", "-j", "monitors")
	if err != nil {
		return nil, &QueryError{Kind: compositor.Hyprland, Err: err}
	}
	var raw []struct {
		Name            string  `json:"name"`
		Width           int     `json:"width"`
		Height          int     `json:"height"`
		X               int     `json:"x"`
		Y               int     `json:"y"`
		Scale           float64 `json:"scale"`
		Focused         bool    `json:"focused"`
		ActiveWorkspace struct {
			ID int `json:"id"`
		} `json:"activeWorkspace"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &QueryError{Kind: compositor.Hyprland, Err: err}
	}
	monitors := make([]Monitor, 0, len(raw))
	for _, m := range raw {
		monitors = append(monitors, Monitor{
			Name:            m.Name,
			Width:           m.Width,
			Height:          m.Height,
			X:               m.X,
			Y:               m.Y,
			Scale:           m.Scale,
			Focused:         m.Focused,
			ActiveWorkspace: strconv.Itoa(m.ActiveWorkspace.ID),
		})
	}
	return monitors, nil
}

func (s *HyprlandSource) listWorkspaces(ctx context.Context, monitors []Monitor) ([]Workspace, error) {
	data, err := s.Runner.Run(ctx, "hyprctl", "-j", "workspaces")
	if err != nil {
		return nil, &QueryError{Kind: compositor.Hyprland, Err: err}
	}
	var raw []struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Monitor string `json:"monitor"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &QueryError{Kind: compositor.Hyprland, Err: err}
	}
	active := make(map[string]string, len(monitors))
	focused := ""
	for _, m := range monitors {
		active[m.Name] = m.ActiveWorkspace
		if m.Focused {
			focused = m.ActiveWorkspace
		}
	}
	workspaces := make([]Workspace, 0, len(raw))
	for _, ws := range raw {
		id := strconv.Itoa(ws.ID)
		workspaces = append(workspaces, Workspace{
			ID:      id,
			Name:    ws.Name,
			Monitor: ws.Monitor,
			Active:  active[ws.Monitor] == id,
			Focused: focused == id,
		})
	}
	return workspaces, nil
}

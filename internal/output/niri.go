package output

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
)

// NiriSource queries niri's JSON message interface.
type NiriSource struct {
	Runner ipc.Runner
}

func (s *NiriSource) Snapshot(ctx context.Context) (Snapshot, error) {
	monitors, err := s.listOutputs(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	workspaces, err := s.listWorkspaces(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for i := range monitors {
		for _, ws := range workspaces {
			if ws.Monitor == monitors[i].Name && ws.Active {
				monitors[i].ActiveWorkspace = ws.ID
			}
			if ws.Monitor == monitors[i].Name && ws.Focused {
				monitors[i].Focused = true
			}
		}
	}
	return Snapshot{Monitors: monitors, Workspaces: workspaces}, nil
}

func (s *NiriSource) listOutputs(ctx context.Context) ([]Monitor, error) {
	data, err := s.Runner.Run(ctx, "niri", "msg", "--json", "outputs")
	if err != nil {
		return nil, &QueryError{Kind: compositor.Niri, Err: err}
	}
	// niri keys the payload by connector name.
	var raw map[string]struct {
		Name    string `json:"name"`
		Logical *struct {
			X      int     `json:"x"`
			Y      int     `json:"y"`
			Width  int     `json:"width"`
			Height int     `json:"height"`
			Scale  float64 `json:"scale"`
		} `json:"logical"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &QueryError{Kind: compositor.Niri, Err: err}
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	monitors := make([]Monitor, 0, len(raw))
	for _, name := range names {
		out := raw[name]
		m := Monitor{Name: name, Scale: 1}
		if out.Name != "" {
			m.Name = out.Name
		}
		if out.Logical != nil {
			m.X = out.Logical.X
			m.Y = out.Logical.Y
			m.Width = out.Logical.Width
			m.Height = out.Logical.Height
			m.Scale = out.Logical.Scale
		}
		monitors = append(monitors, m)
	}
	return monitors, nil
}

func (s *NiriSource) listWorkspaces(ctx context.Context) ([]Workspace, error) {
	data, err := s.Runner.Run(ctx, "niri", "msg", "--json", "workspaces")
	if err != nil {
		return nil, &QueryError{Kind: compositor.Niri, Err: err}
	}
	var raw []struct {
		ID        int    `json:"id"`
		Idx       int    `json:"idx"`
		Name      string `json:"name"`
		Output    string `json:"output"`
		IsActive  bool   `json:"is_active"`
		IsFocused bool   `json:"is_focused"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &QueryError{Kind: compositor.Niri, Err: err}
	}
	workspaces := make([]Workspace, 0, len(raw))
	for _, ws := range raw {
		id := ws.Name
		if id == "" {
			id = strconv.Itoa(ws.Idx)
		}
		workspaces = append(workspaces, Workspace{
			ID:      id,
			Name:    ws.Name,
			Monitor: ws.Output,
			Active:  ws.IsActive,
			Focused: ws.IsFocused,
		})
	}
	return workspaces, nil
}

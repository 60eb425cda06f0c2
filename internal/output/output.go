package output

import (
	"context"
	"fmt"

	"github.com/wallkit/wallkit/internal/compositor"
)

// Monitor is one connected output as reported by the compositor.
type Monitor struct {
	Name            string
	Width           int
	Height          int
	X               int
	Y               int
	Scale           float64
	Focused         bool
	ActiveWorkspace string
}

// Workspace is one workspace as reported by the compositor. IDs are strings
// so numeric Hyprland ids and named niri/sway workspaces share one schema.
type Workspace struct {
	ID      string
	Name    string
	Monitor string
	Active  bool
	Focused bool
}

// Snapshot is a point-in-time view of the session's outputs. Zero monitors
// and zero workspaces are both valid states.
type Snapshot struct {
	Kind       compositor.Kind
	Monitors   []Monitor
	Workspaces []Workspace
}

// MonitorByName returns the monitor with the given name.
func (s Snapshot) MonitorByName(name string) (Monitor, bool) {
	for _, m := range s.Monitors {
		if m.Name == name {
			return m, true
		}
	}
	return Monitor{}, false
}

// FocusedMonitor returns the monitor holding input focus, falling back to
// the first monitor when the compositor does not report focus.
func (s Snapshot) FocusedMonitor() (Monitor, bool) {
	for _, m := range s.Monitors {
		if m.Focused {
			return m, true
		}
	}
	if len(s.Monitors) > 0 {
		return s.Monitors[0], true
	}
	return Monitor{}, false
}

// ActiveWorkspaceFor returns the workspace currently shown on a monitor.
func (s Snapshot) ActiveWorkspaceFor(monitor string) (Workspace, bool) {
	for _, ws := range s.Workspaces {
		if ws.Monitor == monitor && ws.Active {
			return ws, true
		}
	}
	return Workspace{}, false
}

// QueryError reports a failed or unsupported output query. Callers treat it
// as "keep the last known state", never as fatal.
type QueryError struct {
	Kind        compositor.Kind
	Unsupported bool
	Err         error
}

func (e *QueryError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("output query unsupported on %s compositor", e.Kind)
	}
	return fmt.Sprintf("output query on %s: %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Source queries one compositor family for its outputs.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

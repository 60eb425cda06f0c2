// Package resolve computes the effective wallpaper for each monitor from
// the layered assignment state. It performs no I/O beyond the injected
// existence check and never mutates anything.
package resolve

import (
	"os"

	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/store"
)

// Tier names the layer an effective wallpaper came from.
type Tier string

const (
	TierWorkspace Tier = "workspace"
	TierMonitor   Tier = "monitor"
	TierGlobal    Tier = "global"
	TierNone      Tier = "none"
)

// Source supplies assignments by layer. *store.Assignments satisfies it.
type Source interface {
	Workspace(monitor, workspace string) (store.Assignment, bool)
	MonitorDefault(monitor string) (store.Assignment, bool)
	Global() (store.Assignment, bool)
}

// Effective is the wallpaper a monitor should show and where it came from.
type Effective struct {
	Monitor    string
	Assignment store.Assignment
	Tier       Tier
	// Skipped lists assignment paths that were passed over because the
	// file no longer exists on disk.
	Skipped []string
}

// Resolver applies the tier order: workspace override, then monitor
// default, then global default. Assignments whose file is gone fall
// through to the next tier instead of failing.
type Resolver struct {
	// Exists overrides the file existence check. Nil means os.Stat.
	Exists func(path string) bool
}

func (r *Resolver) exists(path string) bool {
	if r.Exists != nil {
		return r.Exists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

// ForMonitor resolves one monitor. workspace may be empty when the
// compositor exposes no workspaces or none is active on the monitor.
func (r *Resolver) ForMonitor(src Source, monitor, workspace string) Effective {
	eff := Effective{Monitor: monitor, Tier: TierNone}
	if workspace != "" {
		if a, ok := src.Workspace(monitor, workspace); ok {
			if r.exists(a.Path) {
				eff.Assignment = a
				eff.Tier = TierWorkspace
				return eff
			}
			eff.Skipped = append(eff.Skipped, a.Path)
		}
	}
	if a, ok := src.MonitorDefault(monitor); ok {
		if r.exists(a.Path) {
			eff.Assignment = a
			eff.Tier = TierMonitor
			return eff
		}
		eff.Skipped = append(eff.Skipped, a.Path)
	}
	if a, ok := src.Global(); ok {
		if r.exists(a.Path) {
			eff.Assignment = a
			eff.Tier = TierGlobal
			return eff
		}
		eff.Skipped = append(eff.Skipped, a.Path)
	}
	return eff
}

// ForSnapshot resolves every monitor in the snapshot, pairing each with its
// active workspace when the compositor reports one.
func (r *Resolver) ForSnapshot(src Source, snap output.Snapshot) map[string]Effective {
	out := make(map[string]Effective, len(snap.Monitors))
	for _, m := range snap.Monitors {
		out[m.Name] = r.ForMonitor(src, m.Name, m.ActiveWorkspace)
	}
	return out
}

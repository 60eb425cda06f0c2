package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/store"
)

type fakeSource struct {
	workspace map[string]store.Assignment
	monitor   map[string]store.Assignment
	global    *store.Assignment
}

func (f fakeSource) Workspace(monitor, workspace string) (store.Assignment, bool) {
	a, ok := f.workspace[monitor+"/"+workspace]
	return a, ok
}

func (f fakeSource) MonitorDefault(monitor string) (store.Assignment, bool) {
	a, ok := f.monitor[monitor]
	return a, ok
}

func (f fakeSource) Global() (store.Assignment, bool) {
	if f.global == nil {
		return store.Assignment{}, false
	}
	return *f.global, true
}

func allExist(string) bool { return true }

func TestForMonitorTierOrder(t *testing.T) {
	src := fakeSource{
		workspace: map[string]store.Assignment{"DP-1/3": {Path: "/w/ws.png"}},
		monitor:   map[string]store.Assignment{"DP-1": {Path: "/w/mon.png"}},
		global:    &store.Assignment{Path: "/w/global.png"},
	}
	r := &Resolver{Exists: allExist}

	tests := []struct {
		name      string
		monitor   string
		workspace string
		wantPath  string
		wantTier  Tier
	}{
		{"workspace override wins", "DP-1", "3", "/w/ws.png", TierWorkspace},
		{"other workspace falls to monitor", "DP-1", "4", "/w/mon.png", TierMonitor},
		{"no workspace uses monitor default", "DP-1", "", "/w/mon.png", TierMonitor},
		{"unknown monitor uses global", "HDMI-1", "1", "/w/global.png", TierGlobal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff := r.ForMonitor(src, tt.monitor, tt.workspace)
			if eff.Assignment.Path != tt.wantPath || eff.Tier != tt.wantTier {
				t.Fatalf("got %q tier %s, want %q tier %s",
					eff.Assignment.Path, eff.Tier, tt.wantPath, tt.wantTier)
			}
		})
	}
}

func TestForMonitorNoAssignments(t *testing.T) {
	r := &Resolver{Exists: allExist}
	eff := r.ForMonitor(fakeSource{}, "DP-1", "1")
	if eff.Tier != TierNone || eff.Assignment.Path != "" {
		t.Fatalf("expected none tier, got %+v", eff)
	}
}

func TestForMonitorMissingFileFallsThrough(t *testing.T) {
	src := fakeSource{
		workspace: map[string]store.Assignment{"DP-1/3": {Path: "/gone/ws.png"}},
		monitor:   map[string]store.Assignment{"DP-1": {Path: "/gone/mon.png"}},
		global:    &store.Assignment{Path: "/w/global.png"},
	}
	r := &Resolver{Exists: func(path string) bool { return path == "/w/global.png" }}

	eff := r.ForMonitor(src, "DP-1", "3")
	if eff.Tier != TierGlobal || eff.Assignment.Path != "/w/global.png" {
		t.Fatalf("expected global fallback, got %+v", eff)
	}
	wantSkipped := []string{"/gone/ws.png", "/gone/mon.png"}
	if diff := cmp.Diff(wantSkipped, eff.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestForMonitorAllMissing(t *testing.T) {
	src := fakeSource{global: &store.Assignment{Path: "/gone/global.png"}}
	r := &Resolver{Exists: func(string) bool { return false }}
	eff := r.ForMonitor(src, "DP-1", "")
	if eff.Tier != TierNone {
		t.Fatalf("expected none tier when every file is missing, got %+v", eff)
	}
	if len(eff.Skipped) != 1 {
		t.Fatalf("expected one skipped path, got %v", eff.Skipped)
	}
}

func TestForSnapshot(t *testing.T) {
	src := fakeSource{
		workspace: map[string]store.Assignment{"DP-1/web": {Path: "/w/web.png"}},
		global:    &store.Assignment{Path: "/w/global.png"},
	}
	snap := output.Snapshot{Monitors: []output.Monitor{
		{Name: "DP-1", ActiveWorkspace: "web"},
		{Name: "HDMI-1"},
	}}
	r := &Resolver{Exists: allExist}

	got := r.ForSnapshot(src, snap)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got["DP-1"].Tier != TierWorkspace || got["DP-1"].Assignment.Path != "/w/web.png" {
		t.Fatalf("DP-1 = %+v", got["DP-1"])
	}
	if got["HDMI-1"].Tier != TierGlobal {
		t.Fatalf("HDMI-1 = %+v", got["HDMI-1"])
	}
}

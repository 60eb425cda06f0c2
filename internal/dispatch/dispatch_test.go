package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
	"github.com/wallkit/wallkit/internal/output"
	"github.com/wallkit/wallkit/internal/report"
	"github.com/wallkit/wallkit/internal/resolve"
	"github.com/wallkit/wallkit/internal/store"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	for prefix, err := range f.errs {
		if strings.HasPrefix(key, prefix) {
			return nil, err
		}
	}
	return nil, nil
}

func (f *fakeRunner) callMatching(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return c
		}
	}
	return ""
}

type fakePointers struct {
	mu   sync.Mutex
	sets map[string]string
}

func (f *fakePointers) SetPointer(_ context.Context, monitor, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets == nil {
		f.sets = make(map[string]string)
	}
	f.sets[monitor] = path
	return nil
}

func (f *fakePointers) get(monitor string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets[monitor]
}

func TestTransitionNormalize(t *testing.T) {
	tr := Transition{Type: "none"}.Normalize()
	if tr.Type != "fade" {
		t.Fatalf("none should normalize to fade, got %q", tr.Type)
	}
	if tr.FPS != 60 || tr.Duration != 1 {
		t.Fatalf("defaults not applied: %+v", tr)
	}
	tr = Transition{Type: "wipe", FPS: 144, Duration: 0.5}.Normalize()
	if tr.Type != "wipe" || tr.FPS != 144 || tr.Duration != 0.5 {
		t.Fatalf("explicit settings altered: %+v", tr)
	}
}

func TestSwwwApplierArgs(t *testing.T) {
	runner := &fakeRunner{}
	a := &SwwwApplier{Runner: runner}
	err := a.Apply(context.Background(), Request{
		Monitor:    "DP-1",
		Path:       "/w/a.png",
		Transition: Transition{Type: "none", FPS: 90, Duration: 2},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	call := runner.callMatching("swww img")
	for _, want := range []string{
		"swww img /w/a.png",
		"--transition-type fade",
		"--transition-fps 90",
		"--transition-duration 2",
		"--resize crop",
		"--outputs DP-1",
	} {
		if !strings.Contains(call, want) {
			t.Fatalf("swww call missing %q: %s", want, call)
		}
	}
}

func TestSwwwApplierTimeout(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"swww img": fmt.Errorf("swww img: %w", ipc.ErrTimeout),
	}}
	a := &SwwwApplier{Runner: runner}
	err := a.Apply(context.Background(), Request{Monitor: "DP-1", Path: "/w/a.png"})
	var de *DispatchError
	if !errors.As(err, &de) || de.Kind != FailureTimeout {
		t.Fatalf("expected timeout DispatchError, got %v", err)
	}
}

func TestPlasmaApplier(t *testing.T) {
	runner := &fakeRunner{}
	a := &PlasmaApplier{Runner: runner}
	if caps := a.Capabilities(); caps.PerMonitor || caps.Transitions {
		t.Fatalf("plasma capabilities = %+v", caps)
	}
	if err := a.Apply(context.Background(), Request{Path: "/w/a.png"}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if runner.callMatching("plasma-apply-wallpaperimage /w/a.png") == "" {
		t.Fatalf("plasma call missing, calls: %v", runner.calls)
	}
}

func TestManualApplierUnsupported(t *testing.T) {
	err := ManualApplier{}.Apply(context.Background(), Request{Monitor: "DP-1"})
	var de *DispatchError
	if !errors.As(err, &de) || de.Kind != FailureUnsupported {
		t.Fatalf("expected unsupported DispatchError, got %v", err)
	}
	if (ManualApplier{}).Instructions() == "" {
		t.Fatal("instructions should not be empty")
	}
}

func TestDispatcherApplyRecordsPointers(t *testing.T) {
	runner := &fakeRunner{}
	pointers := &fakePointers{}
	d := NewDispatcher(runner, pointers, nil)

	err := d.Apply(context.Background(), compositor.Hyprland, Request{Monitor: "DP-1", Path: "/w/a.png"})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if pointers.get("DP-1") != "/w/a.png" {
		t.Fatalf("monitor pointer = %q", pointers.get("DP-1"))
	}
	if pointers.get(store.GlobalPointer) != "/w/a.png" {
		t.Fatalf("global pointer = %q", pointers.get(store.GlobalPointer))
	}
}

func TestDispatcherApplyFailureSkipsPointer(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"swww img": errors.New("boom")}}
	pointers := &fakePointers{}
	d := NewDispatcher(runner, pointers, nil)

	err := d.Apply(context.Background(), compositor.Hyprland, Request{Monitor: "DP-1", Path: "/w/a.png"})
	if err == nil {
		t.Fatal("expected apply error")
	}
	if pointers.get("DP-1") != "" {
		t.Fatal("pointer must not move on failed apply")
	}
}

func TestDispatcherSyncPerMonitor(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"swww img /w/bad.png": errors.New("no such output"),
	}}
	d := NewDispatcher(runner, &fakePointers{}, nil)

	snap := output.Snapshot{Monitors: []output.Monitor{
		{Name: "DP-1"}, {Name: "DP-2"}, {Name: "HDMI-1"},
	}}
	effs := map[string]resolve.Effective{
		"DP-1":   {Monitor: "DP-1", Tier: resolve.TierMonitor, Assignment: store.Assignment{Path: "/w/good.png"}},
		"DP-2":   {Monitor: "DP-2", Tier: resolve.TierGlobal, Assignment: store.Assignment{Path: "/w/bad.png"}},
		"HDMI-1": {Monitor: "HDMI-1", Tier: resolve.TierNone},
	}
	batch := report.NewBatch()
	d.Sync(context.Background(), compositor.Hyprland, snap, effs, batch)

	totals := batch.Totals()
	if totals.Applied != 1 || totals.Failed != 1 || totals.Skipped != 1 {
		t.Fatalf("totals = %+v\n%s", totals, batch.Render())
	}
	if batch.OK() {
		t.Fatal("batch with failure should not be OK")
	}
}

func TestDispatcherSyncGlobalBackend(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcher(runner, &fakePointers{}, nil)

	snap := output.Snapshot{Monitors: []output.Monitor{
		{Name: "eDP-1", Focused: true}, {Name: "HDMI-1"},
	}}
	effs := map[string]resolve.Effective{
		"eDP-1":  {Monitor: "eDP-1", Tier: resolve.TierGlobal, Assignment: store.Assignment{Path: "/w/a.png"}},
		"HDMI-1": {Monitor: "HDMI-1", Tier: resolve.TierGlobal, Assignment: store.Assignment{Path: "/w/a.png"}},
	}
	batch := report.NewBatch()
	d.Sync(context.Background(), compositor.KDE, snap, effs, batch)

	totals := batch.Totals()
	if totals.Applied != 1 || totals.Skipped != 1 || totals.Failed != 0 {
		t.Fatalf("totals = %+v\n%s", totals, batch.Render())
	}
	if runner.callMatching("plasma-apply-wallpaperimage") == "" {
		t.Fatal("plasma should be invoked once")
	}
}

func TestSwaybgModeMapping(t *testing.T) {
	tests := map[string]string{
		"":        "fill",
		"crop":    "fill",
		"fit":     "fit",
		"no":      "center",
		"stretch": "stretch",
		"tile":    "tile",
	}
	for in, want := range tests {
		if got := swaybgMode(in); got != want {
			t.Fatalf("swaybgMode(%q) = %q, want %q", in, got, want)
		}
	}
}

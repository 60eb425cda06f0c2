package dispatch

import (
	"context"
	"os/exec"
	"sync"
)

// SwaybgApplier restarts swaybg per monitor. Fallback for sway sessions
// without swww: no transitions, but per-output targeting works.
type SwaybgApplier struct {
	mu      sync.Mutex
	running map[string]*exec.Cmd
}

func NewSwaybgApplier() *SwaybgApplier {
	return &SwaybgApplier{running: make(map[string]*exec.Cmd)}
}

func (a *SwaybgApplier) Name() string { return "swaybg" }

func (a *SwaybgApplier) Capabilities() Capabilities {
	return Capabilities{PerMonitor: true, Transitions: false}
}

func (a *SwaybgApplier) Apply(ctx context.Context, req Request) error {
	mode := swaybgMode(req.Mode)
	args := []string{"-i", req.Path, "-m", mode}
	if req.Monitor != "" {
		args = append([]string{"-o", req.Monitor}, args...)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.running[req.Monitor]; ok && prev.Process != nil {
		_ = prev.Process.Kill()
		_ = prev.Wait()
		delete(a.running, req.Monitor)
	}
	cmd := exec.Command("swaybg", args...)
	if err := cmd.Start(); err != nil {
		return &DispatchError{Kind: FailureCommand, Monitor: req.Monitor, Err: err}
	}
	a.running[req.Monitor] = cmd
	return nil
}

// swaybg uses its own mode vocabulary.
func swaybgMode(mode string) string {
	switch mode {
	case "", "crop":
		return "fill"
	case "fit":
		return "fit"
	case "no", "none":
		return "center"
	case "stretch":
		return "stretch"
	default:
		return mode
	}
}

var _ Applier = (*SwaybgApplier)(nil)

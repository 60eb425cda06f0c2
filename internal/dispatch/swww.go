package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/wallkit/wallkit/internal/ipc"
)

// SwwwApplier drives the swww daemon. It is the preferred backend on every
// wlroots compositor because it targets single outputs and animates.
type SwwwApplier struct {
	Runner ipc.Runner
}

func (a *SwwwApplier) Name() string { return "swww" }

func (a *SwwwApplier) Capabilities() Capabilities {
	return Capabilities{PerMonitor: true, Transitions: true}
}

func (a *SwwwApplier) Apply(ctx context.Context, req Request) error {
	tr := req.Transition.Normalize()
	mode := req.Mode
	if mode == "" {
		mode = "crop"
	}
	args := []string{
		"img", req.Path,
		"--transition-type", tr.Type,
		"--transition-fps", strconv.Itoa(tr.FPS),
		"--transition-duration", strconv.FormatFloat(tr.Duration, 'f', -1, 64),
		"--resize", mode,
	}
	if req.Monitor != "" {
		args = append(args, "--outputs", req.Monitor)
	}
	if _, err := a.Runner.Run(ctx, "swww", args...); err != nil {
		return wrapRunError(req.Monitor, err)
	}
	return nil
}

func wrapRunError(monitor string, err error) error {
	kind := FailureCommand
	if errors.Is(err, ipc.ErrTimeout) {
		kind = FailureTimeout
	}
	return &DispatchError{Kind: kind, Monitor: monitor, Err: err}
}

var _ Applier = (*SwwwApplier)(nil)

// EnsureSwwwDaemon starts swww-daemon detached when no instance answers
// queries. Safe to call before every apply; a running daemon makes it a
// no-op.
func EnsureSwwwDaemon(ctx context.Context, runner ipc.Runner) error {
	if _, err := runner.Run(ctx, "swww", "query"); err == nil {
		return nil
	}
	cmd := exec.Command("swww-daemon", "--no-cache")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start swww-daemon: %w", err)
	}
	return cmd.Process.Release()
}

// Package dispatch pushes resolved wallpapers to the compositor-specific
// backend helpers. Helpers are plain subprocesses; their exit code plus
// stdout is the only contract.
package dispatch

import (
	"context"
	"strings"
)

// Transition describes the swww animation applied on change.
type Transition struct {
	Type     string
	FPS      int
	Duration float64
}

// Normalize fills defaults and rewrites the broken "none" transition to a
// fast fade. swww's none leaves tearing artifacts on some drivers.
func (t Transition) Normalize() Transition {
	if strings.TrimSpace(t.Type) == "" || strings.EqualFold(t.Type, "none") {
		t.Type = "fade"
	}
	if t.FPS <= 0 {
		t.FPS = 60
	}
	if t.Duration <= 0 {
		t.Duration = 1
	}
	return t
}

// Capabilities describes what a backend can target.
type Capabilities struct {
	PerMonitor  bool
	Transitions bool
}

// Request asks for one wallpaper on one monitor. Monitor may be empty for
// backends that only apply globally.
type Request struct {
	Monitor    string
	Path       string
	Mode       string
	Transition Transition
}

// Applier applies wallpapers through one backend helper.
type Applier interface {
	Name() string
	Capabilities() Capabilities
	Apply(ctx context.Context, req Request) error
}

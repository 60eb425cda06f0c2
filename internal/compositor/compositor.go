package compositor

import (
	"os"
	"os/exec"
	"strings"
)

// Kind identifies the running compositor family.
type Kind int

const (
	Unknown Kind = iota
	Hyprland
	Niri
	Sway
	Labwc
	KDE
)

func (k Kind) String() string {
	switch k {
	case Hyprland:
		return "hyprland"
	case Niri:
		return "niri"
	case Sway:
		return "sway"
	case Labwc:
		return "labwc"
	case KDE:
		return "kde"
	default:
		return "unknown"
	}
}

// ParseKind maps a user-supplied name onto a Kind. Used for explicit
// overrides when detection is not wanted.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hyprland":
		return Hyprland, true
	case "niri":
		return Niri, true
	case "sway":
		return Sway, true
	case "labwc":
		return Labwc, true
	case "kde", "plasma":
		return KDE, true
	default:
		return Unknown, false
	}
}

// Environment abstracts the process environment and process table so
// detection stays deterministic under test.
type Environment interface {
	Getenv(key string) string
	ProcessRunning(name string) bool
}

type systemEnv struct{}

func (systemEnv) Getenv(key string) string { return os.Getenv(key) }

func (systemEnv) ProcessRunning(name string) bool {
	return exec.Command("pgrep", "-x", name).Run() == nil
}

// Detect identifies the running compositor. It never fails; when no signal
// matches it returns Unknown and callers decide how to degrade.
func Detect() Kind {
	return DetectIn(systemEnv{})
}

// DetectIn runs detection against the provided environment. Session sockets
// are checked before desktop identifiers because they are set per-instance
// and survive nested sessions.
func DetectIn(env Environment) Kind {
	if env.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return Hyprland
	}
	if env.Getenv("NIRI_SOCKET") != "" {
		return Niri
	}
	if env.Getenv("SWAYSOCK") != "" {
		return Sway
	}
	desktop := strings.ToLower(env.Getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case strings.Contains(desktop, "kde") || strings.Contains(desktop, "plasma"):
		return KDE
	case strings.Contains(desktop, "labwc"):
		return Labwc
	case strings.Contains(desktop, "wlroots"):
		// Generic wlroots sessions get the wlr-randr query path.
		return Labwc
	}
	if env.ProcessRunning("labwc") {
		return Labwc
	}
	return Unknown
}

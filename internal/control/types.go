package control

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/wallkit/wallkit/internal/report"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// Action names supported by the control protocol.
	ActionStatus  = "status"
	ActionReapply = "reapply"
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionRandom  = "random"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// MonitorStatus is one monitor's last-applied wallpaper as the daemon
// knows it.
type MonitorStatus struct {
	Name      string    `json:"name"`
	Workspace string    `json:"workspace,omitempty"`
	Path      string    `json:"path,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	AppliedAt time.Time `json:"appliedAt,omitempty"`
}

// StatusPayload is the daemon's answer to a status request.
type StatusPayload struct {
	Compositor string          `json:"compositor"`
	Monitors   []MonitorStatus `json:"monitors"`
	Started    time.Time       `json:"started"`
}

// BatchPayload carries the outcome of a reapply.
type BatchPayload struct {
	Outcomes []report.Outcome `json:"outcomes"`
	Totals   report.Totals    `json:"totals"`
}

// CyclePayload carries the result of a navigation request.
type CyclePayload struct {
	Monitor string `json:"monitor"`
	Path    string `json:"path"`
}

// DefaultSocketPath returns the expected location of the wallkit control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv("WALLKIT_CONTROL_SOCKET"); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "wallkit", SocketFileName), nil
}

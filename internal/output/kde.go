package output

import (
	"context"
	"strconv"
	"strings"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/ipc"
)

// XrandrSource parses `xrandr --listmonitors` on KDE Plasma sessions, where
// neither hyprctl-style JSON nor wlr-randr is available. Workspace queries
// are not supported there either, so snapshots carry monitors only.
type XrandrSource struct {
	Runner ipc.Runner
}

func (s *XrandrSource) Snapshot(ctx context.Context) (Snapshot, error) {
	data, err := s.Runner.Run(ctx, "xrandr", "--listmonitors")
	if err != nil {
		return Snapshot{}, &QueryError{Kind: compositor.KDE, Err: err}
	}
	return Snapshot{Monitors: parseListMonitors(string(data))}, nil
}

// parseListMonitors handles lines of the form
//
//	0: +*eDP-1 1920/344x1080/194+0+0  eDP-1
//
// where * marks the primary monitor and the geometry carries physical
// millimeter sizes after each slash.
func parseListMonitors(out string) []Monitor {
	var monitors []Monitor
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Monitors:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		label := strings.TrimLeft(fields[1], "+")
		primary := strings.HasPrefix(label, "*")
		label = strings.TrimPrefix(label, "*")

		m := Monitor{Name: fields[len(fields)-1], Scale: 1, Focused: primary}
		if m.Name == "" {
			m.Name = label
		}
		if w, h, x, y, ok := parseGeometry(fields[2]); ok {
			m.Width, m.Height, m.X, m.Y = w, h, x, y
		}
		monitors = append(monitors, m)
	}
	return monitors
}

func parseGeometry(geom string) (w, h, x, y int, ok bool) {
	// 1920/344x1080/194+0+0
	main, rest, found := strings.Cut(geom, "+")
	if !found {
		return 0, 0, 0, 0, false
	}
	xs, ys, found := strings.Cut(rest, "+")
	if !found {
		return 0, 0, 0, 0, false
	}
	ws, hs, found := strings.Cut(main, "x")
	if !found {
		return 0, 0, 0, 0, false
	}
	w, err := strconv.Atoi(strings.SplitN(ws, "/", 2)[0])
	if err != nil {
		return 0, 0, 0, 0, false
	}
	h, err = strconv.Atoi(strings.SplitN(hs, "/", 2)[0])
	if err != nil {
		return 0, 0, 0, 0, false
	}
	x, err = strconv.Atoi(xs)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	y, err = strconv.Atoi(ys)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return w, h, x, y, true
}

// Package cycle walks the wallpaper directory in sorted order and drives
// next/prev/random navigation per monitor.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wallkit/wallkit/internal/compositor"
	"github.com/wallkit/wallkit/internal/dispatch"
	"github.com/wallkit/wallkit/internal/store"
)

// ErrNoWallpapers reports an empty or image-free wallpaper directory.
var ErrNoWallpapers = errors.New("no wallpapers found")

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".webp": {},
	".tiff": {},
}

// ListWallpapers returns the image files under dir as absolute paths in
// lexicographic order. The listing is recomputed on every navigation so
// added and removed files are picked up without a restart.
func ListWallpapers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read wallpaper dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := imageExtensions[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// State is the slice of the store the controller needs.
type State interface {
	Pointer(monitor string) (store.Pointer, bool, error)
	SetMonitor(ctx context.Context, monitor string, a store.Assignment) error
	SetWorkspace(ctx context.Context, monitor, workspace string, a store.Assignment) error
}

// Backend pushes the chosen wallpaper out. *dispatch.Dispatcher satisfies it.
type Backend interface {
	Apply(ctx context.Context, kind compositor.Kind, req dispatch.Request) error
}

// Target names the monitor being navigated and, when workspace mode is on
// and the compositor reports one, its active workspace.
type Target struct {
	Monitor   string
	Workspace string
}

// Controller implements wallpaper navigation. The assignment is written
// before dispatching, so a failed apply still advances the recorded intent
// and a later reapply converges.
type Controller struct {
	Dir     string
	Mode    string
	State   State
	Backend Backend
	// IntN overrides the random source. Nil means math/rand.
	IntN func(n int) int
}

func (c *Controller) intN(n int) int {
	if c.IntN != nil {
		return c.IntN(n)
	}
	return rand.Intn(n)
}

// Next applies the wallpaper after the monitor's current one, wrapping at
// the end of the listing.
func (c *Controller) Next(ctx context.Context, kind compositor.Kind, t Target) (string, error) {
	return c.step(ctx, kind, t, 1)
}

// Prev applies the wallpaper before the monitor's current one, wrapping at
// the start of the listing.
func (c *Controller) Prev(ctx context.Context, kind compositor.Kind, t Target) (string, error) {
	return c.step(ctx, kind, t, -1)
}

func (c *Controller) step(ctx context.Context, kind compositor.Kind, t Target, delta int) (string, error) {
	files, err := ListWallpapers(c.Dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoWallpapers, c.Dir)
	}
	idx := c.currentIndex(files, t.Monitor)
	var next string
	if idx < 0 {
		// No known current wallpaper: start at the edge of the listing.
		if delta > 0 {
			next = files[0]
		} else {
			next = files[len(files)-1]
		}
	} else {
		next = files[((idx+delta)%len(files)+len(files))%len(files)]
	}
	return next, c.commit(ctx, kind, t, next)
}

// Random applies a uniformly chosen wallpaper, excluding the current one
// whenever more than one candidate exists.
func (c *Controller) Random(ctx context.Context, kind compositor.Kind, t Target) (string, error) {
	files, err := ListWallpapers(c.Dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoWallpapers, c.Dir)
	}
	idx := c.currentIndex(files, t.Monitor)
	choice := files[0]
	if len(files) > 1 {
		pick := c.intN(len(files) - boolToInt(idx >= 0))
		if idx >= 0 && pick >= idx {
			pick++
		}
		choice = files[pick]
	}
	return choice, c.commit(ctx, kind, t, choice)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// currentIndex locates the monitor's pointer in the listing, falling back
// to the global pointer. Missing or stale pointers yield -1.
func (c *Controller) currentIndex(files []string, monitor string) int {
	for _, name := range []string{monitor, store.GlobalPointer} {
		if name == "" {
			continue
		}
		p, ok, err := c.State.Pointer(name)
		if err != nil || !ok {
			continue
		}
		for i, f := range files {
			if f == p.Path {
				return i
			}
		}
	}
	return -1
}

func (c *Controller) commit(ctx context.Context, kind compositor.Kind, t Target, path string) error {
	a := store.Assignment{Path: path, Mode: c.Mode}
	var err error
	if t.Workspace != "" {
		err = c.State.SetWorkspace(ctx, t.Monitor, t.Workspace, a)
	} else {
		err = c.State.SetMonitor(ctx, t.Monitor, a)
	}
	if err != nil {
		return err
	}
	return c.Backend.Apply(ctx, kind, dispatch.Request{Monitor: t.Monitor, Path: path, Mode: c.Mode})
}

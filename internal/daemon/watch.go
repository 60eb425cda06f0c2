package daemon

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wallkit/wallkit/internal/cycle"
)

const (
	debounceWindow = 250 * time.Millisecond

	// selfWriteWindow bounds how long after one of the daemon's own
	// assignment writes the state-file watch stays quiet. The cycle that
	// wrote the file already applied the wallpaper.
	selfWriteWindow = time.Second
)

// debouncer coalesces bursts of triggers into one callback per quiet window.
type debouncer struct {
	timer  *time.Timer
	window time.Duration
	fire   func()
}

func newDebouncer(window time.Duration, fire func()) *debouncer {
	return &debouncer{window: window, fire: fire}
}

func (d *debouncer) trigger() {
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
		return
	}
	d.timer.Reset(d.window)
}

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}

// watchFilesystem reapplies when the assignment file or the wallpaper
// directory changes under us, so external edits take effect without a
// restart. Pointer writes land under current/ and are not watched, which
// keeps the daemon's own applies from feeding back into the loop.
func (d *Daemon) watchFilesystem(ctx context.Context, applyRequests chan<- string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.logger.Warnf("filesystem watch unavailable: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(d.store.Root()); err != nil {
		d.logger.Warnf("watch state dir: %v", err)
	}
	if err := watcher.Add(d.cfg.WallpaperDir); err != nil {
		d.logger.Warnf("watch wallpaper dir: %v", err)
	}

	debounced := newDebouncer(debounceWindow, func() {
		requestApply(applyRequests, "state or wallpaper dir changed")
	})
	defer debounced.stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !d.relevantPath(event.Name) || d.suppressSelfWrite(event.Name) {
				continue
			}
			debounced.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warnf("filesystem watcher error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Daemon) noteSelfWrite() {
	d.selfWriteAt.Store(time.Now().UnixNano())
}

// suppressSelfWrite reports whether a state-file event stems from the
// daemon's own recent assignment write. Wallpaper-directory events are
// never suppressed.
func (d *Daemon) suppressSelfWrite(name string) bool {
	if filepath.Clean(filepath.Dir(name)) != filepath.Clean(d.store.Root()) {
		return false
	}
	at := d.selfWriteAt.Load()
	return at != 0 && time.Since(time.Unix(0, at)) < selfWriteWindow
}

func (d *Daemon) relevantPath(name string) bool {
	base := filepath.Base(name)
	dir := filepath.Clean(filepath.Dir(name))
	if dir == filepath.Clean(d.store.Root()) {
		// Only the assignment document matters; lock and temp files churn
		// on every write.
		return base == "assignments.yaml"
	}
	if dir == filepath.Clean(d.cfg.WallpaperDir) {
		return cycle.IsImage(base)
	}
	return false
}

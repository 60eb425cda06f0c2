package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/wallkit/wallkit/internal/util"
)

const (
	assignmentsFile = "assignments.yaml"
	lockFile        = "state.lock"
	pointerDir      = "current"

	// GlobalPointer names the pointer mirroring the most recent successful
	// apply across all monitors.
	GlobalPointer = "global"

	lockRetryInterval = 50 * time.Millisecond
)

// Assignment records one wallpaper choice.
type Assignment struct {
	Path  string    `yaml:"path"`
	Mode  string    `yaml:"mode,omitempty"`
	SetAt time.Time `yaml:"set_at,omitempty"`
}

// Pointer records the wallpaper last confirmed applied to a monitor.
type Pointer struct {
	Path      string    `yaml:"path"`
	AppliedAt time.Time `yaml:"applied_at"`
}

type monitorDoc struct {
	Default    *Assignment            `yaml:"default,omitempty"`
	Workspaces map[string]*Assignment `yaml:"workspaces,omitempty"`
}

type document struct {
	Global   *Assignment            `yaml:"global,omitempty"`
	Monitors map[string]*monitorDoc `yaml:"monitors,omitempty"`
}

// Assignments is a read-only snapshot of the assignment document.
type Assignments struct {
	doc document
}

// Global returns the session-wide default assignment.
func (a Assignments) Global() (Assignment, bool) {
	if a.doc.Global == nil {
		return Assignment{}, false
	}
	return *a.doc.Global, true
}

// MonitorDefault returns the default assignment for a monitor.
func (a Assignments) MonitorDefault(monitor string) (Assignment, bool) {
	m, ok := a.doc.Monitors[monitor]
	if !ok || m.Default == nil {
		return Assignment{}, false
	}
	return *m.Default, true
}

// Workspace returns the workspace override for a monitor.
func (a Assignments) Workspace(monitor, workspace string) (Assignment, bool) {
	m, ok := a.doc.Monitors[monitor]
	if !ok {
		return Assignment{}, false
	}
	as, ok := m.Workspaces[workspace]
	if !ok || as == nil {
		return Assignment{}, false
	}
	return *as, true
}

// Monitors lists monitor names with at least one assignment.
func (a Assignments) Monitors() []string {
	names := make([]string, 0, len(a.doc.Monitors))
	for name := range a.doc.Monitors {
		names = append(names, name)
	}
	return names
}

// Store is the durable assignment and pointer state rooted at one directory.
// Reads are lock-free and cached on the file's mtime; writers serialize
// through a directory-scoped flock so concurrent CLI invocations and the
// daemon cannot interleave read-modify-write cycles.
type Store struct {
	root        string
	lockTimeout time.Duration
	logger      *util.Logger

	mu           sync.Mutex
	cache        document
	cacheMtime   time.Time
	cacheLoaded  bool
	corruptMtime time.Time
	corruptNoted bool
}

// Open prepares the store directories under root.
func Open(root string, lockTimeout time.Duration, logger *util.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, pointerDir), 0o755); err != nil {
		return nil, &StoreError{Reason: ReasonIO, Path: root, Err: err}
	}
	return &Store{root: root, lockTimeout: lockTimeout, logger: logger}, nil
}

// Root returns the state directory backing the store.
func (s *Store) Root() string { return s.root }

func (s *Store) assignmentsPath() string { return filepath.Join(s.root, assignmentsFile) }

// Assignments returns the current assignment snapshot. A corrupt file is
// reported once per mtime and then read as empty.
func (s *Store) Assignments() (Assignments, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readLocked()
	return Assignments{doc: doc}, err
}

func (s *Store) readLocked() (document, error) {
	path := s.assignmentsPath()
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		s.cache = document{}
		s.cacheLoaded = true
		s.cacheMtime = time.Time{}
		return document{}, nil
	}
	if err != nil {
		return document{}, &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	if s.cacheLoaded && info.ModTime().Equal(s.cacheMtime) {
		return s.cache, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.cache = document{}
		s.cacheLoaded = true
		s.cacheMtime = info.ModTime()
		if !s.corruptNoted || !info.ModTime().Equal(s.corruptMtime) {
			s.corruptNoted = true
			s.corruptMtime = info.ModTime()
			return document{}, &StoreError{Reason: ReasonCorrupt, Path: path, Err: err}
		}
		return document{}, nil
	}
	s.cache = doc
	s.cacheLoaded = true
	s.cacheMtime = info.ModTime()
	return doc, nil
}

// SetGlobal records the session-wide default assignment.
func (s *Store) SetGlobal(ctx context.Context, a Assignment) error {
	return s.update(ctx, func(doc *document) {
		a := stamp(a)
		doc.Global = &a
	})
}

// SetMonitor records a monitor's default assignment.
func (s *Store) SetMonitor(ctx context.Context, monitor string, a Assignment) error {
	return s.update(ctx, func(doc *document) {
		a := stamp(a)
		monitorEntry(doc, monitor).Default = &a
	})
}

// SetWorkspace records a workspace override on a monitor.
func (s *Store) SetWorkspace(ctx context.Context, monitor, workspace string, a Assignment) error {
	return s.update(ctx, func(doc *document) {
		a := stamp(a)
		m := monitorEntry(doc, monitor)
		if m.Workspaces == nil {
			m.Workspaces = make(map[string]*Assignment)
		}
		m.Workspaces[workspace] = &a
	})
}

// RemoveGlobal clears the session-wide default assignment.
func (s *Store) RemoveGlobal(ctx context.Context) error {
	return s.update(ctx, func(doc *document) {
		doc.Global = nil
	})
}

// Remove clears a workspace override, or the monitor default when workspace
// is empty. Removing an absent record is a no-op. Monitors left without any
// assignment are dropped from the document.
func (s *Store) Remove(ctx context.Context, monitor, workspace string) error {
	return s.update(ctx, func(doc *document) {
		m, ok := doc.Monitors[monitor]
		if !ok {
			return
		}
		if workspace == "" {
			m.Default = nil
		} else {
			delete(m.Workspaces, workspace)
		}
		if m.Default == nil && len(m.Workspaces) == 0 {
			delete(doc.Monitors, monitor)
		}
	})
}

func monitorEntry(doc *document, monitor string) *monitorDoc {
	if doc.Monitors == nil {
		doc.Monitors = make(map[string]*monitorDoc)
	}
	m, ok := doc.Monitors[monitor]
	if !ok {
		m = &monitorDoc{}
		doc.Monitors[monitor] = m
	}
	return m
}

func stamp(a Assignment) Assignment {
	if a.SetAt.IsZero() {
		a.SetAt = time.Now().UTC()
	}
	return a
}

// update serializes a read-modify-write cycle: take the flock, re-read the
// file under the lock, apply the mutation, and replace the file atomically.
func (s *Store) update(ctx context.Context, mutate func(*document)) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheLoaded = false
	doc, err := s.readLocked()
	if err != nil {
		var se *StoreError
		if !errors.As(err, &se) || se.Reason != ReasonCorrupt {
			return err
		}
		if s.logger != nil {
			s.logger.Warnf("replacing corrupt state file: %v", err)
		}
		doc = document{}
	}
	mutate(&doc)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return &StoreError{Reason: ReasonIO, Path: s.assignmentsPath(), Err: err}
	}
	if err := writeFileAtomic(s.assignmentsPath(), data); err != nil {
		return err
	}
	s.cacheLoaded = false
	return nil
}

func (s *Store) lock(ctx context.Context) (func(), error) {
	lockPath := filepath.Join(s.root, lockFile)
	fl := flock.New(lockPath)
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}
	ok, err := fl.TryLockContext(lockCtx, lockRetryInterval)
	if err != nil || !ok {
		if err == nil {
			err = context.DeadlineExceeded
		}
		return nil, &StoreError{Reason: ReasonLockTimeout, Path: lockPath, Err: err}
	}
	return func() { _ = fl.Unlock() }, nil
}

// SetPointer records the last confirmed apply for a monitor. Pass
// GlobalPointer to update the session-wide pointer.
func (s *Store) SetPointer(ctx context.Context, monitor, path string) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	data, err := yaml.Marshal(Pointer{Path: path, AppliedAt: time.Now().UTC()})
	if err != nil {
		return &StoreError{Reason: ReasonIO, Path: s.pointerPath(monitor), Err: err}
	}
	return writeFileAtomic(s.pointerPath(monitor), data)
}

// Pointer reads a monitor's last-applied record.
func (s *Store) Pointer(monitor string) (Pointer, bool, error) {
	data, err := os.ReadFile(s.pointerPath(monitor))
	if errors.Is(err, os.ErrNotExist) {
		return Pointer{}, false, nil
	}
	if err != nil {
		return Pointer{}, false, &StoreError{Reason: ReasonIO, Path: s.pointerPath(monitor), Err: err}
	}
	var p Pointer
	if err := yaml.Unmarshal(data, &p); err != nil {
		// A damaged pointer only costs us cycle continuity.
		return Pointer{}, false, nil
	}
	return p, p.Path != "", nil
}

func (s *Store) pointerPath(monitor string) string {
	return filepath.Join(s.root, pointerDir, fmt.Sprintf("%s.yaml", sanitize(monitor)))
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '/' || r == 0 {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wallkit-*")
	if err != nil {
		return &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &StoreError{Reason: ReasonIO, Path: path, Err: err}
	}
	return nil
}

// DefaultRoot returns the state directory honoring XDG_STATE_HOME.
func DefaultRoot() string {
	if env := os.Getenv("XDG_STATE_HOME"); env != "" {
		return filepath.Join(env, "wallkit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "wallkit-state")
	}
	return filepath.Join(home, ".local", "state", "wallkit")
}

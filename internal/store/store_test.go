package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), time.Second, nil)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return s
}

func TestStoreTiers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetGlobal(ctx, Assignment{Path: "/walls/global.png"}); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	if err := s.SetMonitor(ctx, "DP-1", Assignment{Path: "/walls/dp1.png"}); err != nil {
		t.Fatalf("SetMonitor: %v", err)
	}
	if err := s.SetWorkspace(ctx, "DP-1", "3", Assignment{Path: "/walls/ws3.png"}); err != nil {
		t.Fatalf("SetWorkspace: %v", err)
	}

	as, err := s.Assignments()
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if a, ok := as.Global(); !ok || a.Path != "/walls/global.png" {
		t.Fatalf("Global = %+v, %v", a, ok)
	}
	if a, ok := as.MonitorDefault("DP-1"); !ok || a.Path != "/walls/dp1.png" {
		t.Fatalf("MonitorDefault = %+v, %v", a, ok)
	}
	if a, ok := as.Workspace("DP-1", "3"); !ok || a.Path != "/walls/ws3.png" {
		t.Fatalf("Workspace = %+v, %v", a, ok)
	}
	if _, ok := as.Workspace("DP-1", "4"); ok {
		t.Fatal("unexpected workspace assignment for 4")
	}
	if _, ok := as.MonitorDefault("HDMI-1"); ok {
		t.Fatal("unexpected default for unknown monitor")
	}
	if a, ok := as.Workspace("DP-1", "3"); !ok || a.SetAt.IsZero() {
		t.Fatalf("assignment should carry a timestamp, got %+v", a)
	}
}

func TestStoreRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetGlobal(ctx, Assignment{Path: "/walls/global.png"}); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	if err := s.SetMonitor(ctx, "DP-1", Assignment{Path: "/walls/dp1.png"}); err != nil {
		t.Fatalf("SetMonitor: %v", err)
	}
	if err := s.SetWorkspace(ctx, "DP-1", "3", Assignment{Path: "/walls/ws3.png"}); err != nil {
		t.Fatalf("SetWorkspace: %v", err)
	}

	if err := s.Remove(ctx, "DP-1", "3"); err != nil {
		t.Fatalf("Remove workspace: %v", err)
	}
	as, err := s.Assignments()
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if _, ok := as.Workspace("DP-1", "3"); ok {
		t.Fatal("workspace override should be gone")
	}
	if a, ok := as.MonitorDefault("DP-1"); !ok || a.Path != "/walls/dp1.png" {
		t.Fatalf("monitor default should survive workspace removal: %+v, %v", a, ok)
	}

	if err := s.Remove(ctx, "DP-1", ""); err != nil {
		t.Fatalf("Remove monitor default: %v", err)
	}
	as, err = s.Assignments()
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if _, ok := as.MonitorDefault("DP-1"); ok {
		t.Fatal("monitor default should be gone")
	}
	if len(as.Monitors()) != 0 {
		t.Fatalf("empty monitor entry should be pruned: %v", as.Monitors())
	}
	if a, ok := as.Global(); !ok || a.Path != "/walls/global.png" {
		t.Fatalf("global should survive monitor removal: %+v, %v", a, ok)
	}

	if err := s.RemoveGlobal(ctx); err != nil {
		t.Fatalf("RemoveGlobal: %v", err)
	}
	as, err = s.Assignments()
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if _, ok := as.Global(); ok {
		t.Fatal("global should be gone")
	}

	// Removing what is not there is fine.
	if err := s.Remove(ctx, "HDMI-1", "9"); err != nil {
		t.Fatalf("Remove absent record: %v", err)
	}
}

func TestStoreConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Open(dir, 5*time.Second, nil)
			if err != nil {
				t.Errorf("Open: %v", err)
				return
			}
			monitor := fmt.Sprintf("DP-%d", i)
			if err := s.SetMonitor(ctx, monitor, Assignment{Path: "/walls/" + monitor + ".png"}); err != nil {
				t.Errorf("SetMonitor %s: %v", monitor, err)
			}
			if err := s.SetWorkspace(ctx, monitor, "1", Assignment{Path: "/walls/" + monitor + "-ws.png"}); err != nil {
				t.Errorf("SetWorkspace %s: %v", monitor, err)
			}
			// Everyone hammers the same key too; the last write wins but the
			// record must stay well formed.
			if err := s.SetGlobal(ctx, Assignment{Path: fmt.Sprintf("/walls/global-%d.png", i)}); err != nil {
				t.Errorf("SetGlobal: %v", err)
			}
		}(i)
	}
	wg.Wait()

	s, err := Open(dir, time.Second, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	as, err := s.Assignments()
	if err != nil {
		t.Fatalf("Assignments after concurrent writes: %v", err)
	}
	for i := 0; i < writers; i++ {
		monitor := fmt.Sprintf("DP-%d", i)
		if a, ok := as.MonitorDefault(monitor); !ok || a.Path != "/walls/"+monitor+".png" {
			t.Fatalf("lost default for %s: %+v, %v", monitor, a, ok)
		}
		if a, ok := as.Workspace(monitor, "1"); !ok || a.Path != "/walls/"+monitor+"-ws.png" {
			t.Fatalf("lost workspace override for %s: %+v, %v", monitor, a, ok)
		}
	}
	g, ok := as.Global()
	if !ok || !strings.HasPrefix(g.Path, "/walls/global-") || !strings.HasSuffix(g.Path, ".png") {
		t.Fatalf("global record mangled by concurrent writes: %+v, %v", g, ok)
	}
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s1, err := Open(dir, time.Second, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s1.SetMonitor(ctx, "eDP-1", Assignment{Path: "/walls/a.jpg", Mode: "fill"}); err != nil {
		t.Fatalf("SetMonitor: %v", err)
	}

	s2, err := Open(dir, time.Second, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	as, err := s2.Assignments()
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	a, ok := as.MonitorDefault("eDP-1")
	if !ok || a.Path != "/walls/a.jpg" || a.Mode != "fill" {
		t.Fatalf("reopened assignment = %+v, %v", a, ok)
	}
}

func TestStoreExternalEditsPickedUp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SetGlobal(ctx, Assignment{Path: "/walls/old.png"}); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	if _, err := s.Assignments(); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	edited := "global:\n  path: /walls/new.png\n"
	if err := os.WriteFile(s.assignmentsPath(), []byte(edited), 0o644); err != nil {
		t.Fatalf("external edit: %v", err)
	}
	as, err := s.Assignments()
	if err != nil {
		t.Fatalf("Assignments after edit: %v", err)
	}
	if a, ok := as.Global(); !ok || a.Path != "/walls/new.png" {
		t.Fatalf("external edit not picked up: %+v, %v", a, ok)
	}
}

func TestStoreCorruptFileReportedOnce(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.assignmentsPath(), []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	as, err := s.Assignments()
	var se *StoreError
	if !errors.As(err, &se) || se.Reason != ReasonCorrupt {
		t.Fatalf("expected corrupt StoreError, got %v", err)
	}
	if _, ok := as.Global(); ok {
		t.Fatal("corrupt file should read as empty")
	}

	// Same mtime, already reported.
	if _, err := s.Assignments(); err != nil {
		t.Fatalf("second read should be quiet, got %v", err)
	}

	// A writer replaces the corrupt file rather than failing.
	if err := s.SetGlobal(context.Background(), Assignment{Path: "/walls/fresh.png"}); err != nil {
		t.Fatalf("SetGlobal over corrupt file: %v", err)
	}
	as, err = s.Assignments()
	if err != nil {
		t.Fatalf("Assignments after repair: %v", err)
	}
	if a, ok := as.Global(); !ok || a.Path != "/walls/fresh.png" {
		t.Fatalf("repaired global = %+v, %v", a, ok)
	}
}

func TestStoreLockTimeout(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 150*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	holder := flock.New(filepath.Join(dir, lockFile))
	if err := holder.Lock(); err != nil {
		t.Fatalf("pre-lock: %v", err)
	}
	defer holder.Unlock()

	err = s.SetGlobal(context.Background(), Assignment{Path: "/walls/x.png"})
	var se *StoreError
	if !errors.As(err, &se) || se.Reason != ReasonLockTimeout {
		t.Fatalf("expected lock-timeout StoreError, got %v", err)
	}
}

func TestStoreLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetGlobal(context.Background(), Assignment{Path: "/walls/x.png"}); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".wallkit-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestPointerRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Pointer("DP-1"); err != nil || ok {
		t.Fatalf("missing pointer = ok %v, err %v", ok, err)
	}
	if err := s.SetPointer(ctx, "DP-1", "/walls/current.png"); err != nil {
		t.Fatalf("SetPointer: %v", err)
	}
	p, ok, err := s.Pointer("DP-1")
	if err != nil || !ok {
		t.Fatalf("Pointer = ok %v, err %v", ok, err)
	}
	if p.Path != "/walls/current.png" || p.AppliedAt.IsZero() {
		t.Fatalf("pointer = %+v", p)
	}

	if err := s.SetPointer(ctx, GlobalPointer, "/walls/current.png"); err != nil {
		t.Fatalf("SetPointer global: %v", err)
	}
	if _, ok, err := s.Pointer(GlobalPointer); err != nil || !ok {
		t.Fatalf("global pointer = ok %v, err %v", ok, err)
	}
}

func TestSanitizePointerName(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetPointer(context.Background(), "weird/name", "/walls/x.png"); err != nil {
		t.Fatalf("SetPointer: %v", err)
	}
	if _, ok, err := s.Pointer("weird/name"); err != nil || !ok {
		t.Fatalf("sanitized pointer = ok %v, err %v", ok, err)
	}
}

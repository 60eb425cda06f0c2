package report

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestBatchTotalsAndExitCode(t *testing.T) {
	b := NewBatch()
	b.Applied("DP-1", "/w/a.png", "workspace", 120*time.Millisecond)
	b.Skipped("HDMI-1", "no assignment")

	if !b.OK() || b.ExitCode() != 0 {
		t.Fatalf("batch with no failures should be OK, totals %+v", b.Totals())
	}

	b.Failed("DP-2", "/w/b.png", errors.New("swww: no such output"))
	if b.OK() || b.ExitCode() != 1 {
		t.Fatal("batch with a failure should not be OK")
	}

	got := b.Totals()
	if got.Applied != 1 || got.Failed != 1 || got.Skipped != 1 {
		t.Fatalf("totals = %+v", got)
	}
}

func TestBatchOutcomesSorted(t *testing.T) {
	b := NewBatch()
	b.Applied("HDMI-1", "/w/a.png", "global", 0)
	b.Applied("DP-1", "/w/b.png", "monitor", 0)

	out := b.Outcomes()
	if out[0].Monitor != "DP-1" || out[1].Monitor != "HDMI-1" {
		t.Fatalf("outcomes not sorted: %+v", out)
	}
}

func TestBatchRender(t *testing.T) {
	b := NewBatch()
	b.Applied("DP-1", "/w/a.png", "monitor", 0)
	b.Failed("DP-2", "/w/b.png", errors.New("timeout"))
	b.Skipped("HDMI-1", "no assignment")

	out := b.Render()
	for _, want := range []string{
		"DP-1: applied /w/a.png (monitor)",
		"DP-2: failed /w/b.png: timeout",
		"HDMI-1: skipped (no assignment)",
		"1 applied, 1 failed, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestBatchConcurrentAdds(t *testing.T) {
	b := NewBatch()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Applied("mon", "/w/a.png", "global", 0)
		}(i)
	}
	wg.Wait()
	if got := b.Totals().Applied; got != 16 {
		t.Fatalf("applied = %d, want 16", got)
	}
}

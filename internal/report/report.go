// Package report aggregates per-monitor apply outcomes for batch
// operations. One line per monitor, and the exit code falls out of it.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status classifies one monitor's outcome.
type Status string

const (
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of applying a wallpaper to one monitor.
type Outcome struct {
	Monitor  string        `json:"monitor"`
	Status   Status        `json:"status"`
	Path     string        `json:"path,omitempty"`
	Tier     string        `json:"tier,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Totals aggregates outcomes across the batch.
type Totals struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Batch collects outcomes from concurrent appliers.
type Batch struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Add records one outcome.
func (b *Batch) Add(o Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes = append(b.outcomes, o)
}

// Applied records a successful apply.
func (b *Batch) Applied(monitor, path, tier string, d time.Duration) {
	b.Add(Outcome{Monitor: monitor, Status: StatusApplied, Path: path, Tier: tier, Duration: d})
}

// Failed records a failed apply.
func (b *Batch) Failed(monitor, path string, err error) {
	o := Outcome{Monitor: monitor, Status: StatusFailed, Path: path}
	if err != nil {
		o.Reason = err.Error()
	}
	b.Add(o)
}

// Skipped records a monitor with nothing to apply.
func (b *Batch) Skipped(monitor, reason string) {
	b.Add(Outcome{Monitor: monitor, Status: StatusSkipped, Reason: reason})
}

// Outcomes returns the recorded outcomes sorted by monitor name.
func (b *Batch) Outcomes() []Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Outcome, len(b.outcomes))
	copy(out, b.outcomes)
	sort.Slice(out, func(i, j int) bool { return out[i].Monitor < out[j].Monitor })
	return out
}

// Totals counts outcomes by status.
func (b *Batch) Totals() Totals {
	var t Totals
	for _, o := range b.Outcomes() {
		switch o.Status {
		case StatusApplied:
			t.Applied++
		case StatusFailed:
			t.Failed++
		case StatusSkipped:
			t.Skipped++
		}
	}
	return t
}

// OK reports whether no monitor failed. Skips do not fail a batch.
func (b *Batch) OK() bool {
	return b.Totals().Failed == 0
}

// ExitCode maps the batch onto a process exit code.
func (b *Batch) ExitCode() int {
	if b.OK() {
		return 0
	}
	return 1
}

// Render produces the one-line-per-monitor summary.
func (b *Batch) Render() string {
	var sb strings.Builder
	for _, o := range b.Outcomes() {
		switch o.Status {
		case StatusApplied:
			fmt.Fprintf(&sb, "%s: applied %s", o.Monitor, o.Path)
			if o.Tier != "" {
				fmt.Fprintf(&sb, " (%s)", o.Tier)
			}
		case StatusFailed:
			fmt.Fprintf(&sb, "%s: failed", o.Monitor)
			if o.Path != "" {
				fmt.Fprintf(&sb, " %s", o.Path)
			}
			if o.Reason != "" {
				fmt.Fprintf(&sb, ": %s", o.Reason)
			}
		case StatusSkipped:
			fmt.Fprintf(&sb, "%s: skipped", o.Monitor)
			if o.Reason != "" {
				fmt.Fprintf(&sb, " (%s)", o.Reason)
			}
		}
		sb.WriteByte('\n')
	}
	t := b.Totals()
	fmt.Fprintf(&sb, "%d applied, %d failed, %d skipped\n", t.Applied, t.Failed, t.Skipped)
	return sb.String()
}

// Package observ measures the phases of a command-line run.
package observ

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Timer records consecutive named phases. It is safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []phase
	now    func() time.Time
}

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
	done  bool
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Start opens a phase. The returned func closes it with an optional note;
// calls after the first are ignored.
func (t *Timer) Start(name string) func(note string) {
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, start: t.now()})
	t.mu.Unlock()
	return func(note string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		p := &t.phases[idx]
		if p.done {
			return
		}
		p.dur = t.now().Sub(p.start)
		p.note = note
		p.done = true
	}
}

// PhaseReport is the serializable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates finished phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report lists the finished phases and their total in milliseconds.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var report Report
	var total time.Duration
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		total += p.dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       p.name,
			DurationMS: millis(p.dur),
			Note:       p.note,
		})
	}
	if len(report.Phases) > 0 {
		report.TotalMS = millis(total)
	}
	return report
}

// Summary renders r as an aligned table.
func (r Report) Summary() string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-12s %9.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-12s %9.2f ms\n", "total", r.TotalMS)
	return b.String()
}

// LogValue groups the phase durations for structured logs.
func (r Report) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(r.Phases)+1)
	for _, p := range r.Phases {
		attrs = append(attrs, slog.Float64(p.Name+"_ms", p.DurationMS))
	}
	attrs = append(attrs, slog.Float64("total_ms", r.TotalMS))
	return slog.GroupValue(attrs...)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

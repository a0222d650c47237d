package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	c := Counters{Count: 10, Success: 5, SkippedExisting: 2, Errors: 1, Dropped: 1}
	if got := c.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}
	sum := c.Add(Counters{Count: 1, Success: 1})
	if sum.Count != 11 || sum.Success != 6 || sum.Pending() != 1 {
		t.Fatalf("Add() = %+v", sum)
	}
}

func TestSnapshotRateAndPercent(t *testing.T) {
	tests := []struct {
		name     string
		s        Snapshot
		rate     float64
		pct      float64
		pctKnown bool
	}{
		{"zero elapsed", Snapshot{Counters: Counters{Count: 10}, Total: 100}, 0, 10, true},
		{"unknown total", Snapshot{Counters: Counters{Count: 10}, Total: -1, Elapsed: time.Second}, 10, 0, false},
		{"empty file", Snapshot{Total: 0, Elapsed: time.Second}, 0, 0, false},
		{"half", Snapshot{Counters: Counters{Count: 50}, Total: 100, Elapsed: 5 * time.Second}, 10, 50, true},
		{"overrun clamps", Snapshot{Counters: Counters{Count: 120}, Total: 100, Elapsed: time.Second}, 120, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Rate(); got != tt.rate {
				t.Errorf("Rate() = %v, want %v", got, tt.rate)
			}
			p, ok := tt.s.Percent()
			if ok != tt.pctKnown || p != tt.pct {
				t.Errorf("Percent() = %v,%v want %v,%v", p, ok, tt.pct, tt.pctKnown)
			}
		})
	}
}

func TestSnapshotETA(t *testing.T) {
	tests := []struct {
		name string
		s    Snapshot
		want time.Duration
		ok   bool
	}{
		{"warm-up", Snapshot{Counters: Counters{Count: 10}, Total: 100, Elapsed: time.Second}, 0, false},
		{"unknown total", Snapshot{Counters: Counters{Count: 10}, Total: -1, Elapsed: 10 * time.Second}, 0, false},
		{"no progress yet", Snapshot{Total: 100, Elapsed: 10 * time.Second}, 0, false},
		{"overrun", Snapshot{Counters: Counters{Count: 200}, Total: 100, Elapsed: 10 * time.Second}, 0, false},
		{"steady", Snapshot{Counters: Counters{Count: 100}, Total: 400, Elapsed: 10 * time.Second}, 30 * time.Second, true},
		{"done", Snapshot{Counters: Counters{Count: 100}, Total: 100, Elapsed: 10 * time.Second}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.s.ETA()
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ETA() = %v,%v want %v,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{61500 * time.Millisecond, "01:02"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "--:--"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	s := Snapshot{
		Pipeline: "property_data",
		Counters: Counters{Count: 12500, Success: 12000, SkippedExisting: 400, Dropped: 100},
		Total:    50000,
		Elapsed:  5 * time.Second,
	}
	got := Line(s)
	for _, want := range []string{"property_data: 12,500/50,000 (25.0%)", "inserted 12,000", "existing 400", "dropped 100", "2,500/s", "ETA 00:15"} {
		if !strings.Contains(got, want) {
			t.Errorf("Line() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "failed") {
		t.Errorf("Line() = %q, should omit zero failures", got)
	}

	s.Total = -1
	if got := Line(s); !strings.Contains(got, "12,500 lines") || strings.Contains(got, "ETA") {
		t.Errorf("Line(unknown total) = %q", got)
	}

	warm := Snapshot{Pipeline: "p", Total: 10, Elapsed: 3 * time.Second}
	if got := Line(warm); !strings.Contains(got, "ETA --:--") {
		t.Errorf("Line(no rate) = %q, want placeholder ETA", got)
	}
}

func TestSummary(t *testing.T) {
	s := Snapshot{
		Pipeline: "structural_elements",
		File:     "/data/2025-01-01/structural_elem1.txt",
		Counters: Counters{Count: 3, Success: 2, Errors: 1},
		Elapsed:  1500 * time.Millisecond,
	}
	got := Summary(s)
	for _, want := range []string{"finished /data/2025-01-01/structural_elem1.txt", "processed:        3", "inserted:         2", "failed:           1", "duration:         1.5s", "rate:             2 lines/s"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() missing %q:\n%s", want, got)
		}
	}
}

// TestTerminal_AbortedFile ends the carriage-return line and reports the
// error when a file is aborted mid-way.
func TestTerminal_AbortedFile(t *testing.T) {
	var buf bytes.Buffer
	term := NewWriter(&buf, true)

	term.OnProgress(Snapshot{Pipeline: "structural_elements", Counters: Counters{Count: 2}, Total: -1, Elapsed: time.Second})
	term.OnFileDone(Snapshot{
		Pipeline: "structural_elements",
		File:     "structural_elem1.txt",
		Counters: Counters{Count: 2, Errors: 2},
		Elapsed:  time.Second,
		Err:      errors.New("batch write failed"),
	})
	out := buf.String()
	if !strings.Contains(out, "| 2/s\nstructural_elements: aborted structural_elem1.txt\n") {
		t.Fatalf("progress line not terminated before summary: %q", out)
	}
	if !strings.Contains(out, "failed:           2") || !strings.Contains(out, "error:            batch write failed") {
		t.Fatalf("summary = %q", out)
	}
}

func TestTerminal_TTY(t *testing.T) {
	var buf bytes.Buffer
	term := NewWriter(&buf, true)

	term.OnProgress(Snapshot{Pipeline: "neighborhood_codes", Counters: Counters{Count: 1000}, Total: -1, Elapsed: time.Second})
	term.OnProgress(Snapshot{Pipeline: "nc", Counters: Counters{Count: 2}, Total: -1, Elapsed: time.Second})
	out := buf.String()
	if strings.Count(out, "\r") != 2 || strings.Contains(out, "\n") {
		t.Fatalf("tty output = %q; want two \\r lines and no newline", out)
	}
	// The shorter second line must be padded over the first.
	parts := strings.Split(out, "\r")
	if len(parts[2]) < len(parts[1]) {
		t.Fatalf("second line not padded: %q vs %q", parts[2], parts[1])
	}

	buf.Reset()
	term.OnFileDone(Snapshot{Pipeline: "nc", File: "f.txt", Counters: Counters{Count: 2, Success: 2}})
	if !strings.HasPrefix(buf.String(), "\n") || !strings.Contains(buf.String(), "finished f.txt") {
		t.Fatalf("file done output = %q", buf.String())
	}

	buf.Reset()
	term.OnFileDone(Snapshot{Pipeline: "nc", File: "g.txt"})
	if strings.HasPrefix(buf.String(), "\n") {
		t.Fatalf("extra newline when no progress line was on screen: %q", buf.String())
	}
}

func TestTerminal_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	term := NewWriter(&buf, false)

	term.OnProgress(Snapshot{Pipeline: "p", Counters: Counters{Count: 100}, Total: -1, Elapsed: time.Second})
	if buf.Len() != 0 {
		t.Fatalf("non-tty wrote a line-cadence update: %q", buf.String())
	}
	term.OnProgress(Snapshot{Pipeline: "p", Counters: Counters{Count: 1000}, Total: -1, Elapsed: time.Second, Flush: true})
	if got := buf.String(); strings.Contains(got, "\r") || !strings.HasSuffix(got, "\n") {
		t.Fatalf("non-tty flush output = %q", got)
	}
}

type recorder struct {
	progress, done int
}

func (r *recorder) OnProgress(Snapshot) { r.progress++ }
func (r *recorder) OnFileDone(Snapshot) { r.done++ }

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, Nop{}, b}
	m.OnProgress(Snapshot{})
	m.OnProgress(Snapshot{})
	m.OnFileDone(Snapshot{})
	if a.progress != 2 || b.progress != 2 || a.done != 1 || b.done != 1 {
		t.Fatalf("a=%+v b=%+v", a, b)
	}
}

// Package progress tracks per-file ingestion counters and renders them.
//
// The importer only talks to the Observer interface; rendering to a terminal
// and forwarding to metrics are observers like any other, so the ingestion
// loop can be tested without capturing output.
package progress

import (
	"math"
	"time"
)

// etaWarmup is how long a file must have been running before an ETA is shown.
const etaWarmup = 2 * time.Second

// Counters are the monotonically increasing per-file counts.
//
// Every data line ends in exactly one of Success, SkippedExisting, Errors or
// Dropped, so Success+SkippedExisting+Errors+Dropped == Count once all
// batches are flushed.
type Counters struct {
	Count           int64 // data lines seen, header excluded
	Success         int64 // rows in batches the store accepted
	SkippedExisting int64 // rows whose key was pre-loaded from the store
	Errors          int64 // rows in batches the store rejected
	Dropped         int64 // rows without a business key
}

// Pending is the number of rows mapped but not yet flushed.
func (c Counters) Pending() int64 {
	return c.Count - c.Success - c.SkippedExisting - c.Errors - c.Dropped
}

// Add returns the field-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Count:           c.Count + o.Count,
		Success:         c.Success + o.Success,
		SkippedExisting: c.SkippedExisting + o.SkippedExisting,
		Errors:          c.Errors + o.Errors,
		Dropped:         c.Dropped + o.Dropped,
	}
}

// Snapshot is the state handed to observers.
type Snapshot struct {
	Pipeline string
	File     string
	Counters
	Total   int64 // expected data lines; -1 when unknown
	Elapsed time.Duration
	// Flush is set when the snapshot follows a batch write rather than the
	// periodic line cadence.
	Flush bool
	// Err is set on the final snapshot of a file that was aborted.
	Err error
}

// Rate is lines per second, 0 before any time has elapsed.
func (s Snapshot) Rate() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Count) / secs
}

// Percent reports completion when the total is known.
func (s Snapshot) Percent() (float64, bool) {
	if s.Total <= 0 {
		return 0, false
	}
	p := float64(s.Count) / float64(s.Total) * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return math.Min(p, 100), true
}

// ETA estimates the remaining time as (Total-Count)/Rate. It reports false
// while the total is unknown, during the warm-up period, or when the result
// is not a finite non-negative number.
func (s Snapshot) ETA() (time.Duration, bool) {
	if s.Total < 0 || s.Elapsed <= etaWarmup {
		return 0, false
	}
	rate := s.Rate()
	remaining := float64(s.Total - s.Count)
	eta := remaining / rate
	if math.IsNaN(eta) || math.IsInf(eta, 0) || eta < 0 {
		return 0, false
	}
	return time.Duration(eta * float64(time.Second)), true
}

// Observer receives progress updates for one file at a time.
type Observer interface {
	OnProgress(Snapshot)
	OnFileDone(Snapshot)
}

// Multi fans updates out to several observers in order.
type Multi []Observer

func (m Multi) OnProgress(s Snapshot) {
	for _, o := range m {
		o.OnProgress(s)
	}
}

func (m Multi) OnFileDone(s Snapshot) {
	for _, o := range m {
		o.OnFileDone(s)
	}
}

// Nop discards updates.
type Nop struct{}

func (Nop) OnProgress(Snapshot) {}
func (Nop) OnFileDone(Snapshot) {}

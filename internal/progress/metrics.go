package progress

import "countyloader/internal/metrics"

// Metrics forwards per-file totals to the metrics facade when a file
// finishes. Intermediate snapshots are ignored.
type Metrics struct{}

func (Metrics) OnProgress(Snapshot) {}

func (Metrics) OnFileDone(s Snapshot) {
	metrics.RecordRow(s.Pipeline, "processed", s.Count)
	metrics.RecordRow(s.Pipeline, "inserted", s.Success)
	metrics.RecordRow(s.Pipeline, "skipped_existing", s.SkippedExisting)
	metrics.RecordRow(s.Pipeline, "dropped", s.Dropped)
	metrics.RecordRow(s.Pipeline, "failed", s.Errors)
}

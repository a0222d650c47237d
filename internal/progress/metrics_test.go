package progress

import (
	"sync"
	"testing"

	"countyloader/internal/metrics"
)

type rowBackend struct {
	mu   sync.Mutex
	rows map[string]float64
}

func (b *rowBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if name != metrics.RecordsTotal {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows[labels["job"]+"/"+labels["kind"]] += delta
}

func (b *rowBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (b *rowBackend) Flush() error                                   { return nil }

func TestMetricsObserver(t *testing.T) {
	rb := &rowBackend{rows: map[string]float64{}}
	metrics.SetBackend(rb)

	var o Observer = Metrics{}
	o.OnProgress(Snapshot{Pipeline: "property_data", Counters: Counters{Count: 5}})
	if len(rb.rows) != 0 {
		t.Fatalf("OnProgress recorded rows: %v", rb.rows)
	}

	o.OnFileDone(Snapshot{
		Pipeline: "property_data",
		Counters: Counters{Count: 10, Success: 6, SkippedExisting: 2, Dropped: 1, Errors: 1},
	})
	want := map[string]float64{
		"property_data/processed":        10,
		"property_data/inserted":         6,
		"property_data/skipped_existing": 2,
		"property_data/dropped":          1,
		"property_data/failed":           1,
	}
	for k, v := range want {
		if rb.rows[k] != v {
			t.Errorf("rows[%s] = %v, want %v", k, rb.rows[k], v)
		}
	}
}

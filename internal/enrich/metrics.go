package enrich

import (
	"sync/atomic"
	"time"
)

// Metrics accumulates per-process enrichment counters. All methods are safe
// for concurrent use.
type Metrics struct {
	queries  atomic.Int64
	failures atomic.Int64
	features atomic.Int64
	totalNS  atomic.Int64
}

// RecordQuery records one completed dataset query.
func (m *Metrics) RecordQuery(elapsed time.Duration, features int) {
	if m == nil {
		return
	}
	m.queries.Add(1)
	m.features.Add(int64(features))
	m.totalNS.Add(int64(elapsed))
}

// RecordFailure records one failed dataset query.
func (m *Metrics) RecordFailure() {
	if m == nil {
		return
	}
	m.failures.Add(1)
}

// Stats is a point-in-time snapshot of the counters.
type Stats struct {
	Queries      int64         `json:"queries"`
	Failures     int64         `json:"failures"`
	Features     int64         `json:"features"`
	AvgQueryTime time.Duration `json:"avg_query_time"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	s := Stats{
		Queries:  m.queries.Load(),
		Failures: m.failures.Load(),
		Features: m.features.Load(),
	}
	if s.Queries > 0 {
		s.AvgQueryTime = time.Duration(m.totalNS.Load() / s.Queries)
	}
	return s
}

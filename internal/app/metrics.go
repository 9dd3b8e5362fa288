// Package app provides the main application structure and coordination.
package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks editor-core activity counters: edit throughput, the
// parse/highlight pipeline, and LSP traffic. All counters are atomic;
// any goroutine may record.
type Metrics struct {
	// Edit pipeline
	editCount   atomic.Uint64
	editTotalNs atomic.Int64
	editMaxNs   atomic.Int64

	// Parse/highlight pipeline
	reparseCount    atomic.Uint64
	reparseTotalNs  atomic.Int64
	highlightHits   atomic.Uint64
	highlightMisses atomic.Uint64

	// LSP traffic
	lspRequests  atomic.Uint64
	lspResponses atomic.Uint64
	lspTimeouts  atomic.Uint64
	lspSyncSends atomic.Uint64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordEdit records one applied edit and how long it took.
func (m *Metrics) RecordEdit(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.editCount.Add(1)
	m.editTotalNs.Add(ns)
	for {
		old := m.editMaxNs.Load()
		if ns <= old {
			break
		}
		if m.editMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordReparse records one completed background reparse.
func (m *Metrics) RecordReparse(duration time.Duration) {
	m.reparseCount.Add(1)
	m.reparseTotalNs.Add(duration.Nanoseconds())
}

// RecordHighlightHit records a highlight cache hit.
func (m *Metrics) RecordHighlightHit() {
	m.highlightHits.Add(1)
}

// RecordHighlightMiss records a highlight cache miss.
func (m *Metrics) RecordHighlightMiss() {
	m.highlightMisses.Add(1)
}

// IncrementLSPRequests records one outgoing LSP request.
func (m *Metrics) IncrementLSPRequests() {
	m.lspRequests.Add(1)
}

// IncrementLSPResponses records one routed LSP response.
func (m *Metrics) IncrementLSPResponses() {
	m.lspResponses.Add(1)
}

// IncrementLSPTimeouts records expired pending requests.
func (m *Metrics) IncrementLSPTimeouts(n int) {
	if n > 0 {
		m.lspTimeouts.Add(uint64(n))
	}
}

// IncrementLSPSyncSends records one debounced didChange send.
func (m *Metrics) IncrementLSPSyncSends() {
	m.lspSyncSends.Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Uptime time.Duration

	EditCount  uint64
	EditAvgNs  int64
	EditMaxNs  int64

	ReparseCount uint64
	ReparseAvgNs int64

	HighlightHits   uint64
	HighlightMisses uint64

	LSPRequests  uint64
	LSPResponses uint64
	LSPTimeouts  uint64
	LSPSyncSends uint64
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:          time.Since(m.startTime),
		EditCount:       m.editCount.Load(),
		EditMaxNs:       m.editMaxNs.Load(),
		ReparseCount:    m.reparseCount.Load(),
		HighlightHits:   m.highlightHits.Load(),
		HighlightMisses: m.highlightMisses.Load(),
		LSPRequests:     m.lspRequests.Load(),
		LSPResponses:    m.lspResponses.Load(),
		LSPTimeouts:     m.lspTimeouts.Load(),
		LSPSyncSends:    m.lspSyncSends.Load(),
	}
	if s.EditCount > 0 {
		s.EditAvgNs = m.editTotalNs.Load() / int64(s.EditCount)
	}
	if s.ReparseCount > 0 {
		s.ReparseAvgNs = m.reparseTotalNs.Load() / int64(s.ReparseCount)
	}
	return s
}

// HighlightHitRate returns the cache hit ratio in [0, 1].
func (m *Metrics) HighlightHitRate() float64 {
	hits := m.highlightHits.Load()
	misses := m.highlightMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Reset zeroes every counter and restarts the uptime clock.
func (m *Metrics) Reset() {
	m.editCount.Store(0)
	m.editTotalNs.Store(0)
	m.editMaxNs.Store(0)
	m.reparseCount.Store(0)
	m.reparseTotalNs.Store(0)
	m.highlightHits.Store(0)
	m.highlightMisses.Store(0)
	m.lspRequests.Store(0)
	m.lspResponses.Store(0)
	m.lspTimeouts.Store(0)
	m.lspSyncSends.Store(0)
	m.startTime = time.Now()
}

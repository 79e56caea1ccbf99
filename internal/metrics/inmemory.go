package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RedirectsDirect         uint64
	RedirectsCloaked        uint64
	RedirectsSafe           uint64
	BotsDetected            uint64
	ClicksAppended          uint64
	ClickAppendFailures     uint64
	LinkCacheHits           uint64
	LinkCacheMisses         uint64
	RedirectDurationCount   uint64
	RedirectDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	redirectsDirect         uint64
	redirectsCloaked        uint64
	redirectsSafe           uint64
	botsDetected            uint64
	clicksAppended          uint64
	clickAppendFailures     uint64
	linkCacheHits           uint64
	linkCacheMisses         uint64
	redirectDurationCount   uint64
	redirectDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RedirectsDirect:         atomic.LoadUint64(&m.redirectsDirect),
		RedirectsCloaked:        atomic.LoadUint64(&m.redirectsCloaked),
		RedirectsSafe:           atomic.LoadUint64(&m.redirectsSafe),
		BotsDetected:            atomic.LoadUint64(&m.botsDetected),
		ClicksAppended:          atomic.LoadUint64(&m.clicksAppended),
		ClickAppendFailures:     atomic.LoadUint64(&m.clickAppendFailures),
		LinkCacheHits:           atomic.LoadUint64(&m.linkCacheHits),
		LinkCacheMisses:         atomic.LoadUint64(&m.linkCacheMisses),
		RedirectDurationCount:   atomic.LoadUint64(&m.redirectDurationCount),
		RedirectDurationTotalNs: atomic.LoadInt64(&m.redirectDurationTotalNs),
	}
}

// IncRedirectServed increments the counter for the response outcome.
func (m *InMemoryRecorder) IncRedirectServed(outcome string) {
	switch outcome {
	case OutcomeDirect:
		atomic.AddUint64(&m.redirectsDirect, 1)
	case OutcomeCloaked:
		atomic.AddUint64(&m.redirectsCloaked, 1)
	case OutcomeSafe:
		atomic.AddUint64(&m.redirectsSafe, 1)
	}
}

// IncBotDetected increments the bot classification counter.
func (m *InMemoryRecorder) IncBotDetected() {
	atomic.AddUint64(&m.botsDetected, 1)
}

// ObserveRedirectDuration records redirect duration.
func (m *InMemoryRecorder) ObserveRedirectDuration(duration time.Duration) {
	atomic.AddUint64(&m.redirectDurationCount, 1)
	atomic.AddInt64(&m.redirectDurationTotalNs, duration.Nanoseconds())
}

// IncClickAppended counts click append attempts by status.
func (m *InMemoryRecorder) IncClickAppended(status string) {
	if status == "success" {
		atomic.AddUint64(&m.clicksAppended, 1)
	} else {
		atomic.AddUint64(&m.clickAppendFailures, 1)
	}
}

// IncLinkCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncLinkCacheHit() {
	atomic.AddUint64(&m.linkCacheHits, 1)
}

// IncLinkCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncLinkCacheMiss() {
	atomic.AddUint64(&m.linkCacheMisses, 1)
}

// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels for redirect responses.
const (
	OutcomeDirect  = "direct"  // plain 302 to the destination
	OutcomeCloaked = "cloaked" // HTML interstitial for humans
	OutcomeSafe    = "safe"    // safe-page 302 for bots
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Redirect pipeline
	IncRedirectServed(outcome string)
	IncBotDetected()
	ObserveRedirectDuration(duration time.Duration)

	// Click log
	IncClickAppended(status string) // status: "success" or "failed"

	// Link cache
	IncLinkCacheHit()
	IncLinkCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all events.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncRedirectServed(outcome string)               {}
func (n *NoopRecorder) IncBotDetected()                                {}
func (n *NoopRecorder) ObserveRedirectDuration(duration time.Duration) {}
func (n *NoopRecorder) IncClickAppended(status string)                 {}
func (n *NoopRecorder) IncLinkCacheHit()                               {}
func (n *NoopRecorder) IncLinkCacheMiss()                              {}

package metrics

import "time"

// Recorder counts verification outcomes and observes pipeline latency.
type Recorder interface {
	IncVerification(outcome string)
	ObserveVerifyLatency(d time.Duration)
}

// Package data holds the shared runtime state of the pharmainsight API.
// StatusContainer records the outcome of the periodic upstream probe with
// atomic operations so handlers can read it without locking.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/logging"
)

// Compile-time check to ensure StatusContainer implements StatusStore
var _ interfaces.StatusStore = (*StatusContainer)(nil)

// StatusContainer holds the upstream label API status
type StatusContainer struct {
	lastProbe           atomic.Value // interfaces.ProbeResult
	consecutiveFailures atomic.Int64
	probeCount          atomic.Int64
	probing             atomic.Bool
	serverStartTime     atomic.Value // time.Time
}

// NewStatusContainer creates a container with no probe recorded yet
func NewStatusContainer() *StatusContainer {
	sc := &StatusContainer{}
	sc.lastProbe.Store(interfaces.ProbeResult{})
	sc.serverStartTime.Store(time.Time{})
	return sc
}

// GetLastProbe returns the most recent probe result. CheckedAt is zero when
// no probe has run.
func (sc *StatusContainer) GetLastProbe() interfaces.ProbeResult {
	if v := sc.lastProbe.Load(); v != nil {
		if result, ok := v.(interfaces.ProbeResult); ok {
			return result
		}
	}

	logging.Warn("Could not get the last probe result")
	return interfaces.ProbeResult{}
}

// RecordProbe stores result and updates the failure streak
func (sc *StatusContainer) RecordProbe(result interfaces.ProbeResult) {
	sc.lastProbe.Store(result)
	sc.probeCount.Add(1)

	if result.OK {
		sc.consecutiveFailures.Store(0)
		return
	}
	sc.consecutiveFailures.Add(1)
}

// ConsecutiveFailures returns the number of failed probes since the last success
func (sc *StatusContainer) ConsecutiveFailures() int {
	return int(sc.consecutiveFailures.Load())
}

// ProbeCount returns the number of probes recorded since startup
func (sc *StatusContainer) ProbeCount() int {
	return int(sc.probeCount.Load())
}

// IsProbing returns true while a probe is in flight
func (sc *StatusContainer) IsProbing() bool {
	return sc.probing.Load()
}

// BeginProbe marks the start of a probe.
// Returns false if another probe is already running.
func (sc *StatusContainer) BeginProbe() bool {
	return sc.probing.CompareAndSwap(false, true)
}

// EndProbe marks the end of a probe
func (sc *StatusContainer) EndProbe() {
	sc.probing.Store(false)
}

func (sc *StatusContainer) SetServerStartTime(startTime time.Time) {
	sc.serverStartTime.Store(startTime)
}

func (sc *StatusContainer) GetServerStartTime() time.Time {
	if v := sc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

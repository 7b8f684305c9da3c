// Package health evaluates service health from the upstream probe results.
package health

import (
	"net/http"
	"time"

	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/scheduler"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	status        interfaces.StatusStore
	probeInterval time.Duration
}

// NewHealthChecker creates a health checker. probeInterval 0 means probing
// is disabled and the upstream is assumed reachable.
func NewHealthChecker(status interfaces.StatusStore, probeInterval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		status:        status,
		probeInterval: probeInterval,
	}
}

// HealthCheck maps the last probe to a status:
//   - healthy (200): last probe succeeded, no probe yet, or probing disabled
//   - degraded (200): last probe failed
//   - unhealthy (503): scheduler.UnhealthyAfter consecutive failures
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	last := h.status.GetLastProbe()
	failures := h.status.ConsecutiveFailures()

	switch {
	case h.probeInterval <= 0 || last.CheckedAt.IsZero():
		status = "healthy"
		httpStatus = http.StatusOK

	case failures >= scheduler.UnhealthyAfter:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case !last.OK:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	probe := map[string]any{
		"enabled":              h.probeInterval > 0,
		"consecutive_failures": failures,
		"is_probing":           h.status.IsProbing(),
	}
	if !last.CheckedAt.IsZero() {
		probe["last_probe"] = last.CheckedAt.Format(time.RFC3339)
		probe["ok"] = last.OK
		probe["latency_ms"] = last.Latency.Milliseconds()
		if last.StatusCode != 0 {
			probe["status_code"] = last.StatusCode
		}
		if last.Error != "" {
			probe["error"] = last.Error
		}
	}
	if next := h.NextProbe(); !next.IsZero() {
		probe["next_probe"] = next.Format(time.RFC3339)
	}

	data = map[string]any{
		"label_api": probe,
	}

	return status, data, httpStatus
}

// NextProbe returns when the next probe is due: one interval after the
// last one, or right after startup when none ran yet
func (h *HealthCheckerImpl) NextProbe() time.Time {
	if h.probeInterval <= 0 {
		return time.Time{}
	}

	last := h.status.GetLastProbe()
	if last.CheckedAt.IsZero() {
		return h.status.GetServerStartTime()
	}
	return last.CheckedAt.Add(h.probeInterval)
}

// Package scheduler runs the periodic label API probe. Each probe sends a
// single unfiltered request and records the outcome in the status store;
// lookups never consult it.
package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/lookup"
	"github.com/giygas/pharmainsight-api/metrics"
	"github.com/go-co-op/gocron"
)

// UnhealthyAfter is the number of consecutive failed probes after which the
// label API is considered down
const UnhealthyAfter = 3

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

type Scheduler struct {
	status    interfaces.StatusStore
	fetcher   lookup.Fetcher
	interval  time.Duration
	scheduler *gocron.Scheduler
}

// NewScheduler creates a prober. An interval of 0 disables probing.
func NewScheduler(status interfaces.StatusStore, fetcher lookup.Fetcher, interval time.Duration) *Scheduler {
	return &Scheduler{
		status:    status,
		fetcher:   fetcher,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start schedules the probe. The first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		logging.Info("Label API probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.probe)
	if err != nil {
		logging.Error("Failed to schedule label API probe", "error", err)
		return fmt.Errorf("failed to schedule probe: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Label API probe scheduled", "interval", s.interval.String())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

// probe performs one upstream check and stores its outcome
func (s *Scheduler) probe() {
	// Skip when the previous probe is still waiting on the upstream
	if !s.status.BeginProbe() {
		logging.Info("Probe already in progress, skipping...")
		return
	}
	defer s.status.EndProbe()

	start := time.Now()
	resp, err := s.fetcher.Fetch(context.Background(), lookup.ExternalQueryDescriptor{ResultLimit: 1})

	result := interfaces.ProbeResult{
		CheckedAt: start,
		Latency:   time.Since(start),
	}
	// Error only ever holds the kind or status, it is served on /health
	switch {
	case err != nil:
		result.Error = lookup.Classify(err).Kind.String()
	case resp.StatusCode != http.StatusOK:
		result.StatusCode = resp.StatusCode
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	default:
		result.StatusCode = resp.StatusCode
		result.OK = true
	}

	s.status.RecordProbe(result)

	if result.OK {
		metrics.LabelAPIUp.Set(1)
		logging.Debug("Label API probe succeeded", "latency_ms", result.Latency.Milliseconds())
		return
	}

	metrics.LabelAPIUp.Set(0)
	failures := s.status.ConsecutiveFailures()
	if failures >= UnhealthyAfter {
		logging.Error("Label API unreachable", "consecutive_failures", failures, "error", result.Error, "cause", err)
		return
	}
	logging.Warn("Label API probe failed", "consecutive_failures", failures, "error", result.Error, "cause", err)
}

package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/metrics"
)

// Service runs the lookup pipeline. It holds no per-lookup state and is safe
// for concurrent use as long as its Fetcher is.
type Service struct {
	fetcher Fetcher
}

// NewService creates a lookup service on top of fetcher.
func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Lookup finds name in the label database and returns either the normalized
// record or a classified error, never both.
func (s *Service) Lookup(ctx context.Context, name string) (outcome Outcome) {
	logName := strings.TrimSpace(name)
	defer func() {
		if r := recover(); r != nil {
			outcome = Failure(errUnexpected(fmt.Errorf("panic during lookup: %v", r)))
		}
		s.observe(logName, outcome)
	}()

	query, err := NewLookupQuery(name)
	if err != nil {
		return Failure(Classify(err))
	}
	logName = query.Name()

	resp, err := s.fetcher.Fetch(ctx, query.Descriptor())
	if err != nil {
		return Failure(Classify(err))
	}

	raw, err := ValidateResponse(resp, query.Name())
	if err != nil {
		return Failure(Classify(err))
	}

	return Success(Normalize(raw))
}

func (s *Service) observe(name string, outcome Outcome) {
	if outcome.OK() {
		metrics.LookupTotal.WithLabelValues("success").Inc()
		return
	}

	kind := outcome.Err.Kind
	metrics.LookupTotal.WithLabelValues(kind.String()).Inc()

	switch kind {
	case Unexpected:
		logging.Error("Medicine lookup failed", "name", name, "error", outcome.Err.Err)
	case Timeout:
		logging.Warn("Medicine lookup timed out", "name", name, "error", outcome.Err.Err)
	default:
		logging.Debug("Medicine lookup without result", "name", name, "kind", kind.String())
	}
}

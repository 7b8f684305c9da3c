// Package interfaces defines the contracts between the pharmainsight API
// packages so handlers, health checks and the scheduler can be tested with
// fakes.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/pharmainsight-api/accounts"
	"github.com/giygas/pharmainsight-api/lookup"
)

// ProbeResult is the outcome of one upstream label API probe
type ProbeResult struct {
	CheckedAt  time.Time
	OK         bool
	StatusCode int // 0 when no response was received
	Latency    time.Duration
	Error      string
}

// StatusStore holds the upstream status shared by the prober and the
// health checker. Implementations must be safe for concurrent use.
type StatusStore interface {
	GetLastProbe() ProbeResult
	RecordProbe(result ProbeResult)
	ConsecutiveFailures() int
	ProbeCount() int
	IsProbing() bool
	BeginProbe() bool
	EndProbe()
	GetServerStartTime() time.Time
}

// Lookuper resolves a medicine name into a normalized record or a
// classified failure.
type Lookuper interface {
	Lookup(ctx context.Context, name string) lookup.Outcome
}

// AccountStore persists user accounts
type AccountStore interface {
	CreateAccount(ctx context.Context, in accounts.NewAccount) (*accounts.Account, error)
	FindByCredentials(ctx context.Context, email, password string) (*accounts.Account, error)
	FindByID(ctx context.Context, id int64) (*accounts.Account, error)
}

// Scheduler manages background jobs
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports the service health.
type HealthChecker interface {
	// HealthCheck returns the status name, details for the response body and
	// the HTTP status code to answer with.
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// NextProbe returns when the next upstream probe is due, zero when
	// probing is disabled.
	NextProbe() time.Time
}

// InputValidator checks user supplied values before they reach a service
type InputValidator interface {
	ValidateMedicineName(input string) error
	ValidateEmail(input string) (string, error)
	ValidatePassword(input string) error
	ValidateAccountName(input string) error
	ValidatePhone(input string) error
	ValidateAccountID(input string) (int64, error)
}

// HTTPHandler defines the API endpoints
type HTTPHandler interface {
	LookupMedicine(w http.ResponseWriter, r *http.Request)
	LookupMedicineQuery(w http.ResponseWriter, r *http.Request)
	SearchForm(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

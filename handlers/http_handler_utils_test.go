package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/pharmainsight-api/accounts"
	"github.com/giygas/pharmainsight-api/interfaces"
	"github.com/giygas/pharmainsight-api/lookup"
	"github.com/go-chi/chi/v5"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// newTestRecord returns a fully populated record with placeholders for the
// fields not given
func newTestRecord(brand, generic string) *lookup.MedicineRecord {
	record := lookup.Normalize(lookup.RawLabelRecord{
		"openfda": map[string]any{
			"brand_name":        []any{brand},
			"generic_name":      []any{generic},
			"manufacturer_name": []any{"Bayer HealthCare LLC"},
			"route":             []any{"ORAL"},
		},
		"purpose":        []any{"Pain reliever"},
		"effective_time": "20240115",
	})
	return &record
}

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockLookuperBuilder provides fluent interface for building mock lookupers
type MockLookuperBuilder struct {
	mock *MockLookuper
}

func NewMockLookuperBuilder() *MockLookuperBuilder {
	return &MockLookuperBuilder{mock: &MockLookuper{}}
}

func (b *MockLookuperBuilder) WithRecord(record *lookup.MedicineRecord) *MockLookuperBuilder {
	b.mock.outcome = lookup.Success(*record)
	return b
}

func (b *MockLookuperBuilder) WithError(err *lookup.Error) *MockLookuperBuilder {
	b.mock.outcome = lookup.Failure(err)
	return b
}

func (b *MockLookuperBuilder) Build() *MockLookuper {
	return b.mock
}

// MockInputValidatorBuilder provides fluent interface for building mock validators
type MockInputValidatorBuilder struct {
	mock *MockInputValidator
}

func NewMockInputValidatorBuilder() *MockInputValidatorBuilder {
	return &MockInputValidatorBuilder{mock: &MockInputValidator{}}
}

func (b *MockInputValidatorBuilder) WithMedicineNameError(err error) *MockInputValidatorBuilder {
	b.mock.medicineNameErr = err
	return b
}

func (b *MockInputValidatorBuilder) WithEmailError(err error) *MockInputValidatorBuilder {
	b.mock.emailErr = err
	return b
}

func (b *MockInputValidatorBuilder) WithPasswordError(err error) *MockInputValidatorBuilder {
	b.mock.passwordErr = err
	return b
}

func (b *MockInputValidatorBuilder) WithAccountIDError(err error) *MockInputValidatorBuilder {
	b.mock.accountIDErr = err
	return b
}

func (b *MockInputValidatorBuilder) Build() *MockInputValidator {
	return b.mock
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, body io.Reader, urlParams map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// ExecuteForm posts form values to handler
func (h *HTTPTestHelper) ExecuteForm(handler http.HandlerFunc, path string, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()

	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v (body %q)", err, resp.Body.String())
	}
}

// AssertErrorResponse asserts the error body shape and returns it
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int, expectedKind string) ErrorResponse {
	h.t.Helper()

	var errorResp ErrorResponse
	h.AssertJSONResponse(resp, expectedStatus, &errorResp)

	if errorResp.Code != expectedStatus {
		h.t.Errorf("Expected code field %d, got %d", expectedStatus, errorResp.Code)
	}
	if errorResp.Error != http.StatusText(expectedStatus) {
		h.t.Errorf("Expected error field %q, got %q", http.StatusText(expectedStatus), errorResp.Error)
	}
	if errorResp.Kind != expectedKind {
		h.t.Errorf("Expected kind %q, got %q", expectedKind, errorResp.Kind)
	}
	if errorResp.Message == "" {
		h.t.Error("Error response should have a message")
	}
	return errorResp
}

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockLookuper implements interfaces.Lookuper for testing
type MockLookuper struct {
	outcome  lookup.Outcome
	calls    int
	lastName string
}

func (m *MockLookuper) Lookup(_ context.Context, name string) lookup.Outcome {
	m.calls++
	m.lastName = name
	return m.outcome
}

// MockInputValidator implements interfaces.InputValidator for testing
type MockInputValidator struct {
	medicineNameErr error
	emailErr        error
	passwordErr     error
	accountIDErr    error
}

func (m *MockInputValidator) ValidateMedicineName(input string) error {
	return m.medicineNameErr
}

func (m *MockInputValidator) ValidateEmail(input string) (string, error) {
	if m.emailErr != nil {
		return "", m.emailErr
	}
	return strings.ToLower(strings.TrimSpace(input)), nil
}

func (m *MockInputValidator) ValidatePassword(input string) error {
	return m.passwordErr
}

func (m *MockInputValidator) ValidateAccountName(input string) error {
	return nil
}

func (m *MockInputValidator) ValidatePhone(input string) error {
	return nil
}

func (m *MockInputValidator) ValidateAccountID(input string) (int64, error) {
	if m.accountIDErr != nil {
		return -1, m.accountIDErr
	}
	var id int64
	for _, r := range input {
		id = id*10 + int64(r-'0')
	}
	return id, nil
}

// MockHealthChecker implements interfaces.HealthChecker for testing
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.details, m.httpStatus
}

func (m *MockHealthChecker) NextProbe() time.Time {
	return time.Time{}
}

// MockStatusStore implements interfaces.StatusStore for testing
type MockStatusStore struct {
	startTime time.Time
}

func (m *MockStatusStore) GetLastProbe() interfaces.ProbeResult { return interfaces.ProbeResult{} }
func (m *MockStatusStore) RecordProbe(result interfaces.ProbeResult) {}
func (m *MockStatusStore) ConsecutiveFailures() int { return 0 }
func (m *MockStatusStore) ProbeCount() int { return 0 }
func (m *MockStatusStore) IsProbing() bool { return false }
func (m *MockStatusStore) BeginProbe() bool { return true }
func (m *MockStatusStore) EndProbe() {}
func (m *MockStatusStore) GetServerStartTime() time.Time { return m.startTime }

// MockAccountStore implements interfaces.AccountStore for testing
type MockAccountStore struct {
	account *accounts.Account
	err     error
	findErr error // returned by FindByID only

	lastNew      accounts.NewAccount
	lastEmail    string
	lastPassword string
	lastID       int64
}

func (m *MockAccountStore) CreateAccount(_ context.Context, in accounts.NewAccount) (*accounts.Account, error) {
	m.lastNew = in
	return m.account, m.err
}

func (m *MockAccountStore) FindByCredentials(_ context.Context, email, password string) (*accounts.Account, error) {
	m.lastEmail = email
	m.lastPassword = password
	return m.account, m.err
}

func (m *MockAccountStore) FindByID(_ context.Context, id int64) (*accounts.Account, error) {
	m.lastID = id
	return m.account, m.findErr
}

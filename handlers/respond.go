// Package handlers provides the HTTP handlers of the pharmainsight API:
// medicine lookups, health checks and accounts.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/lookup"
)

// Error kinds reported by the HTTP layer in addition to lookup.ErrorKind
const (
	kindInvalidInput = "invalid_input"
	kindConflict     = "conflict"
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
	kindNotFound     = "not_found"
	kindInternal     = "internal"
)

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
}

// RespondWithJSON writes payload as JSON with the given status code
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, kind, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
		Kind:    kind,
	})
}

// statusForKind maps lookup failures to HTTP status codes
func statusForKind(kind lookup.ErrorKind) int {
	switch kind {
	case lookup.EmptyInput:
		return http.StatusBadRequest
	case lookup.NotFound:
		return http.StatusNotFound
	case lookup.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// respondWithLookupError writes a classified lookup failure. Only the
// user-facing message is sent; the cause stays in the logs.
func respondWithLookupError(w http.ResponseWriter, err *lookup.Error) {
	RespondWithError(w, statusForKind(err.Kind), err.Kind.String(), err.Message)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

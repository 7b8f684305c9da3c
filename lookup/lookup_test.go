package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giygas/pharmainsight-api/logging"
)

// stubFetcher returns a canned response and records how often it was called.
type stubFetcher struct {
	resp  *RawResponse
	err   error
	calls int
	last  ExternalQueryDescriptor
	panic bool
}

func (s *stubFetcher) Fetch(_ context.Context, desc ExternalQueryDescriptor) (*RawResponse, error) {
	s.calls++
	s.last = desc
	if s.panic {
		panic("boom")
	}
	return s.resp, s.err
}

func TestLookupEmptyInput(t *testing.T) {
	for _, name := range []string{"", "   "} {
		fetcher := &stubFetcher{}
		outcome := NewService(fetcher).Lookup(context.Background(), name)

		if outcome.OK() || outcome.Record != nil {
			t.Fatalf("Expected failure for %q", name)
		}
		if outcome.Err.Kind != EmptyInput {
			t.Errorf("Expected EmptyInput, got %v", outcome.Err.Kind)
		}
		if fetcher.calls != 0 {
			t.Errorf("Fetcher must not be called for empty input, called %d times", fetcher.calls)
		}
	}
}

func TestLookupOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		fetcher  *stubFetcher
		wantKind ErrorKind
		wantMsg  string
	}{
		{
			name:     "timeout",
			fetcher:  &stubFetcher{err: context.DeadlineExceeded},
			wantKind: Timeout,
			wantMsg:  msgTimeout,
		},
		{
			name:     "non-success status",
			fetcher:  &stubFetcher{resp: &RawResponse{StatusCode: http.StatusNotFound}},
			wantKind: NotFound,
			wantMsg:  "No data found for 'Aspirin'",
		},
		{
			name:     "empty results",
			fetcher:  &stubFetcher{resp: &RawResponse{StatusCode: http.StatusOK, Body: []byte(`{"results":[]}`)}},
			wantKind: NotFound,
			wantMsg:  "No information available for 'Aspirin'",
		},
		{
			name:     "transport failure",
			fetcher:  &stubFetcher{err: errors.New("dial tcp: connection refused")},
			wantKind: Unexpected,
			wantMsg:  msgUnexpected,
		},
		{
			name:     "undecodable body",
			fetcher:  &stubFetcher{resp: &RawResponse{StatusCode: http.StatusOK, Body: []byte(`<html>`)}},
			wantKind: Unexpected,
			wantMsg:  msgUnexpected,
		},
		{
			name:     "panic in fetcher",
			fetcher:  &stubFetcher{panic: true},
			wantKind: Unexpected,
			wantMsg:  msgUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := NewService(tt.fetcher).Lookup(context.Background(), "  Aspirin ")

			if outcome.Record != nil {
				t.Fatalf("Expected no record, got %+v", outcome.Record)
			}
			if outcome.Err == nil {
				t.Fatal("Expected error")
			}
			if outcome.Err.Kind != tt.wantKind {
				t.Errorf("Expected kind %v, got %v", tt.wantKind, outcome.Err.Kind)
			}
			if outcome.Err.Message != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, outcome.Err.Message)
			}
			if tt.fetcher.calls != 1 {
				t.Errorf("Expected exactly one fetch, got %d", tt.fetcher.calls)
			}
		})
	}
}

func TestLookupLogsTrimmedName(t *testing.T) {
	var buf bytes.Buffer
	previous := logging.DefaultLoggingService
	logging.DefaultLoggingService = &logging.LoggingService{
		Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	defer func() { logging.DefaultLoggingService = previous }()

	tests := []struct {
		name      string
		fetcher   *stubFetcher
		wantLevel string
	}{
		{"timeout", &stubFetcher{err: context.DeadlineExceeded}, "WARN"},
		{"transport failure", &stubFetcher{err: errors.New("connection refused")}, "ERROR"},
		{"not found", &stubFetcher{resp: &RawResponse{StatusCode: http.StatusNotFound}}, "DEBUG"},
		{"panic in fetcher", &stubFetcher{panic: true}, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			NewService(tt.fetcher).Lookup(context.Background(), "  Aspirin\t")

			var entry struct {
				Level string `json:"level"`
				Name  string `json:"name"`
			}
			line, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
			if err := json.Unmarshal(line, &entry); err != nil {
				t.Fatalf("Expected a JSON log line, got %q: %v", buf.String(), err)
			}
			if entry.Level != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, entry.Level)
			}
			if entry.Name != "Aspirin" {
				t.Errorf("Expected trimmed name in log, got %q", entry.Name)
			}
		})
	}
}

func TestLookupSuccess(t *testing.T) {
	fetcher := &stubFetcher{resp: &RawResponse{
		StatusCode: http.StatusOK,
		Body: []byte(`{"results":[
			{"openfda":{"brand_name":["Aspirin"]},"purpose":["pain relief"],"effective_time":"20200601"},
			{"openfda":{"brand_name":["Ignored"]}}
		]}`),
	}}

	outcome := NewService(fetcher).Lookup(context.Background(), "Aspirin")

	if !outcome.OK() {
		t.Fatalf("Expected success, got %v", outcome.Err)
	}
	if outcome.Err != nil {
		t.Fatal("Success must not carry an error")
	}
	if outcome.Record.Brand != "Aspirin" || outcome.Record.Purpose != "pain relief" || outcome.Record.LastUpdated != "01-06-2020" {
		t.Errorf("Unexpected record: %+v", outcome.Record)
	}
	if outcome.Record.Generic != Placeholder {
		t.Errorf("Expected placeholder generic, got %q", outcome.Record.Generic)
	}
	if fetcher.last.ResultLimit != 1 {
		t.Errorf("Expected limit 1, got %d", fetcher.last.ResultLimit)
	}
}

func TestLookupEndToEndTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.Write([]byte(`{"results":[{"openfda":{"brand_name":["Aspirin"]}}]}`))
	}))
	defer server.Close()

	service := NewService(NewHTTPFetcher(WithBaseURL(server.URL), WithTimeout(50*time.Millisecond)))
	outcome := service.Lookup(context.Background(), "Aspirin")

	if outcome.OK() {
		t.Fatal("Expected timeout failure")
	}
	if outcome.Err.Kind != Timeout {
		t.Errorf("Expected Timeout, got %v", outcome.Err.Kind)
	}
}

func TestLookupEndToEndSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"openfda":{"brand_name":["Advil"],"generic_name":["IBUPROFEN"]},"purpose":["Pain reliever/fever reducer"]}]}`))
	}))
	defer server.Close()

	outcome := NewService(NewHTTPFetcher(WithBaseURL(server.URL))).Lookup(context.Background(), "advil")

	if !outcome.OK() {
		t.Fatalf("Expected success, got %v", outcome.Err)
	}
	if outcome.Record.Generic != "IBUPROFEN" {
		t.Errorf("Expected IBUPROFEN, got %q", outcome.Record.Generic)
	}
	if outcome.Record.LastUpdated != Placeholder {
		t.Errorf("Expected placeholder date, got %q", outcome.Record.LastUpdated)
	}
}

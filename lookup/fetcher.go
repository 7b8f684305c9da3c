package lookup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/giygas/pharmainsight-api/logging"
	"github.com/giygas/pharmainsight-api/metrics"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultBaseURL is the openFDA drug label endpoint.
	DefaultBaseURL = "https://api.fda.gov/drug/label.json"
	// DefaultTimeout bounds a single label API call.
	DefaultTimeout = 10 * time.Second

	maxBodySize = 10 * 1024 * 1024
	userAgent   = "pharmainsight-api/1.0"
)

// Fetcher issues one label API request per call. Implementations must not retry.
type Fetcher interface {
	Fetch(ctx context.Context, desc ExternalQueryDescriptor) (*RawResponse, error)
}

// HTTPFetcher fetches labels over HTTP with a fixed time budget.
type HTTPFetcher struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithBaseURL overrides the label endpoint (tests point this at httptest servers).
func WithBaseURL(u string) FetcherOption {
	return func(f *HTTPFetcher) { f.baseURL = u }
}

// WithAPIKey sends key as the api_key parameter.
func WithAPIKey(key string) FetcherOption {
	return func(f *HTTPFetcher) { f.apiKey = key }
}

// WithTimeout sets the time budget for a whole request, body included.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHTTPClient sets the underlying client. Its own Timeout is replaced.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewHTTPFetcher creates a fetcher for the openFDA label API.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(f)
	}
	client := *f.client
	client.Timeout = f.timeout
	f.client = &client
	return f
}

// Fetch performs a single GET. Any status code is returned as a response;
// only transport and read failures are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, desc ExternalQueryDescriptor) (*RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	reqURL, err := f.requestURL(desc)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build label request: %w", withoutURL(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.LabelAPIRequestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("label request failed: %w", withoutURL(err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close label response body", "error", err)
		}
	}()

	body, err := readBody(resp.Body)
	metrics.LabelAPIRequestDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	logging.Debug("Label API responded", "status", resp.StatusCode, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// withoutURL drops the *url.Error wrapper, whose text carries the request URL
// and with it the api_key parameter.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return fmt.Errorf("%s label API: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func (f *HTTPFetcher) requestURL(desc ExternalQueryDescriptor) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid label API URL %q: %w", f.baseURL, err)
	}

	params := u.Query()
	if desc.SearchExpression != "" {
		params.Set("search", desc.SearchExpression)
	}
	limit := desc.ResultLimit
	if limit < 1 {
		limit = 1
	}
	params.Set("limit", strconv.Itoa(limit))
	if f.apiKey != "" {
		params.Set("api_key", f.apiKey)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// readBody reads the whole body or fails. Bodies that are not valid UTF-8 are
// decoded as ISO-8859-1.
func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read label response body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("label response body exceeds %d bytes", maxBodySize)
	}

	if utf8.Valid(body) {
		return body, nil
	}

	decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode label response body: %w", err)
	}
	return decoded, nil
}

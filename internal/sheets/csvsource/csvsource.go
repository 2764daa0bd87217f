// Package csvsource fetches a published spreadsheet as CSV over HTTP.
package csvsource

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"ledgerdash/internal/core"
	"ledgerdash/internal/sheets"
)

// DefaultTimeout bounds a single fetch when none is configured.
const DefaultTimeout = 8 * time.Second

// Source downloads and decodes the table on every Fetch.
type Source struct {
	name    string
	url     string
	timeout time.Duration
	client  *http.Client
}

var _ sheets.RowSource = (*Source)(nil)

// Option customizes a Source.
type Option func(*Source)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// New returns a source for url. name is used in errors and metrics.
func New(name, url string, opts ...Option) *Source {
	s := &Source{
		name:    name,
		url:     strings.TrimSpace(url),
		timeout: DefaultTimeout,
		client:  newHTTPClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads the CSV. A missing URL, a transport error, a timeout, a
// non-2xx status or a malformed body all fail with core.ErrSourceUnavailable.
func (s *Source) Fetch(ctx context.Context) ([]core.RawRecord, error) {
	if s.url == "" {
		return nil, &sheets.Error{Source: s.name, Op: "configure", Err: fmt.Errorf("csv url not set")}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &sheets.Error{Source: s.name, Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &sheets.Error{Source: s.name, Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &sheets.Error{Source: s.name, Op: "fetch", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	rows, err := sheets.DecodeCSV(resp.Body)
	if err != nil {
		return nil, &sheets.Error{Source: s.name, Op: "parse", Err: err}
	}
	return rows, nil
}

// newHTTPClient keeps connections to the sheet host warm between requests.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport}
}

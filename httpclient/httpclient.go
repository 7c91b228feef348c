// Copyright 2024 Cloudbase Solutions SRL

package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-samfira/appservices-logs/config"
)

const (
	// RequestIDHeader carries the run id on every request.
	RequestIDHeader = "X-Request-Id"
	userAgent       = "appservices-logs"

	// maxErrorBody bounds how much of an error response ends up in
	// the returned error.
	maxErrorBody = 4 << 10
)

type requestIDTransport struct {
	base      http.RoundTripper
	requestID string
}

func (r *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(RequestIDHeader, r.requestID)
	req.Header.Set("User-Agent", userAgent)
	return r.base.RoundTrip(req)
}

// New returns the HTTP client shared by every request of a run.
func New(cfg config.API, requestID string) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout.Duration,
		Transport: &requestIDTransport{
			base:      http.DefaultTransport,
			requestID: requestID,
		},
	}
}

// StatusError builds an error out of a non 2xx response.
func StatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
}

// IsSuccess reports whether resp carries a 2xx status.
func IsSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

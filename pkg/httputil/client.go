// Package httputil provides shared HTTP utilities with connection
// pooling and safe response handling for outbound lookups (RDAP,
// registration data) made by the scoring gateway.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize is the default maximum size for reading HTTP response
// bodies. Registry responses are small; anything larger is hostile or
// broken.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// FastTimeout bounds best-effort lookups adjacent to the scoring path.
// Anything on this client must be allowed to fail without affecting a
// verdict.
const FastTimeout = 2 * time.Second

// Shared transport with optimized connection pooling. Safe for
// concurrent use; reusing TCP connections matters because registration
// lookups hit the same handful of registry endpoints repeatedly.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

var (
	clientFast *http.Client
	clientOnce sync.Once
)

// FastClient returns the shared best-effort lookup client. All callers
// share one connection pool; use this instead of creating http.Client
// instances per request.
//
// Usage:
//
//	resp, err := httputil.FastClient().Do(req)
func FastClient() *http.Client {
	clientOnce.Do(func() {
		clientFast = &http.Client{
			Timeout:   FastTimeout,
			Transport: sharedTransport,
		}
	})
	return clientFast
}

// ReadResponseBody safely reads an HTTP response body with size limits.
//
// Usage:
//
//	body, err := httputil.ReadResponseBody(resp.Body, httputil.MaxResponseSize)
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// DrainAndClose properly drains and closes an HTTP response body.
// This ensures connection reuse in the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}

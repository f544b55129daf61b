// Package httpclient builds the outbound HTTP clients used for LLM backends and the CLI.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// baseTransport is shared by every client so LLM calls reuse warm connections.
var baseTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        32,
	MaxIdleConnsPerHost: 8,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// tracedTransport propagates trace context and records a client span per request.
var tracedTransport http.RoundTripper = otelhttp.NewTransport(baseTransport,
	otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return "HTTP " + r.Method + " " + r.URL.Path
	}),
)

// NewPooledClient returns a client on the shared, traced transport.
// A zero timeout leaves requests bounded only by their context.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: tracedTransport,
	}
}

package services

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// limitedTransport waits on a shared [rate.Limiter] before every outbound request.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the client used for provider calls.
//
// requestsPerSecond caps outbound requests across all callers sharing the client; zero or less disables the cap.
func NewHTTPClient(base *http.Client, requestsPerSecond float64) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	if requestsPerSecond <= 0 {
		return base
	}

	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	client := *base
	client.Transport = &limitedTransport{
		base:    transport,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
	return &client
}

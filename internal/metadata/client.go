package metadata

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"mediasorter/internal/services"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetries  = 4
	minRetryWait    = 100 * time.Millisecond
	maxRetryWait    = time.Second
	userAgentHeader = "mediasorter"
)

// ClientOptions tunes the REST client shared by provider adapters.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewRESTClient builds a resty client that retries rate-limit and
// unavailable responses with jittered backoff.
func NewRESTClient(opts ClientOptions) *resty.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = defaultRetries
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgentHeader)
	client.SetHeader("Accept", "application/json")
	client.SetRetryCount(retries)
	client.SetRetryWaitTime(minRetryWait)
	client.SetRetryMaxWaitTime(maxRetryWait)
	client.AddRetryConditions(func(resp *resty.Response, err error) bool {
		if err != nil || resp == nil {
			return false
		}
		return Retryable(resp.StatusCode())
	})
	return client
}

// Retryable reports whether a status code is worth another attempt.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// StatusError maps a non-200 response onto the error taxonomy. A 404 is a
// miss, rate limiting and outages are transient, anything else is a
// provider failure.
func StatusError(provider, operation string, resp *resty.Response) error {
	if resp == nil {
		return services.Wrap(services.ErrProvider, provider, operation, "no response", nil)
	}
	status := resp.StatusCode()
	switch {
	case status == http.StatusNotFound:
		return NotFound(provider, "%s returned 404", operation)
	case Retryable(status):
		return services.Wrap(services.ErrTransient, provider, operation, fmt.Sprintf("status %d after retries", status), nil)
	default:
		body := strings.TrimSpace(resp.String())
		if len(body) > 200 {
			body = body[:200]
		}
		return services.Wrap(services.ErrProvider, provider, operation, fmt.Sprintf("status %d: %s", status, body), nil)
	}
}

// RequestError wraps a transport failure.
func RequestError(provider, operation string, err error) error {
	return services.Wrap(services.ErrProvider, provider, operation, "request failed", err)
}

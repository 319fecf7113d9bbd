package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/statushistory/internal/domain"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 10 * time.Second

// maxDrain caps how much of a response body is read before closing it.
const maxDrain = 64 << 10

type HTTPChecker struct {
	Client *http.Client
	Now    func() time.Time
}

func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: DefaultTimeout},
		Now:    time.Now,
	}
}

// Probe issues one GET to svc.URL. Any 2xx is up, every other status is
// down with the observed latency, and transport errors are down with
// FailedResponseTime.
func (c *HTTPChecker) Probe(ctx context.Context, svc domain.ServiceConfig) domain.StatusRecord {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	start := now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.URL, nil)
	if err != nil {
		return failed(now())
	}
	if svc.Auth && svc.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+svc.Secret)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return failed(now())
	}
	received := now()
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	status := domain.StatusDown
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		status = domain.StatusUp
	}
	elapsed := received.Sub(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return domain.StatusRecord{
		Status:       status,
		Timestamp:    domain.FormatTimestamp(now()),
		ResponseTime: elapsed,
	}
}

func (c *HTTPChecker) client() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}

func failed(at time.Time) domain.StatusRecord {
	return domain.StatusRecord{
		Status:       domain.StatusDown,
		Timestamp:    domain.FormatTimestamp(at),
		ResponseTime: FailedResponseTime,
	}
}

package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/scanguard/scanguard/internal/health"
	"github.com/scanguard/scanguard/internal/types"
)

// DefaultTimeout bounds a single health check. A timed-out probe is an
// ordinary failure, indistinguishable from an unhealthy endpoint.
const DefaultTimeout = 3 * time.Second

// HTTPProber checks scanner liveness against per-identity health endpoints.
// It implements health.Prober.
type HTTPProber struct {
	endpoints map[string]string
	client    *http.Client
}

var _ health.Prober = (*HTTPProber)(nil)

// NewHTTPProber maps lowercase scanner names to health-check URLs.
func NewHTTPProber(endpoints map[string]string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := make(map[string]string, len(endpoints))
	for name, url := range endpoints {
		m[strings.ToLower(name)] = url
	}
	return &HTTPProber{
		endpoints: m,
		client:    &http.Client{Timeout: timeout},
	}
}

// Probe returns true for a 2xx response. Network errors, timeouts, and
// non-2xx statuses are ordinary failures (false, nil). A missing endpoint
// mapping is a configuration error and surfaces as such.
func (p *HTTPProber) Probe(ctx context.Context, target types.ScannerIdentity) (bool, error) {
	url, ok := p.endpoints[strings.ToLower(target.Name)]
	if !ok {
		return false, fmt.Errorf("%w: no health endpoint for scanner %q", health.ErrConfig, target.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: bad health endpoint %q: %v", health.ErrConfig, url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

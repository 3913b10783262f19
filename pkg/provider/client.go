package provider

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/dixieflatline76/Lumen/config"
	"golang.org/x/time/rate"
)

// HTTP client tuning for proxy calls.
const (
	clientRequestTimeout        = 30 * time.Second
	clientDialerTimeout         = 10 * time.Second
	clientKeepAlive             = 30 * time.Second
	clientResponseHeaderTimeout = 15 * time.Second
	clientTLSHandshakeTimeout   = 10 * time.Second
)

// UserAgentTransport wraps an http.RoundTripper and adds a User-Agent header.
type UserAgentTransport struct {
	http.RoundTripper
	UserAgent string
}

// RoundTrip executes a single HTTP transaction, adding the User-Agent header.
func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())
	clonedReq.Header.Set("User-Agent", t.UserAgent)
	return t.RoundTripper.RoundTrip(clonedReq)
}

// ProxyClient issues paced GET requests against the backend proxy. All four
// providers share one instance so pacing applies across the process.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewProxyClient creates a client for the given proxy base URL.
func NewProxyClient(baseURL string) *ProxyClient {
	robustClient := &http.Client{
		Timeout: clientRequestTimeout,
		Transport: &UserAgentTransport{
			RoundTripper: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   clientDialerTimeout,
					KeepAlive: clientKeepAlive,
				}).DialContext,
				ResponseHeaderTimeout: clientResponseHeaderTimeout,
				TLSHandshakeTimeout:   clientTLSHandshakeTimeout,
			},
			UserAgent: config.AppName + "/" + config.AppVersion,
		},
	}

	return &ProxyClient{
		baseURL:    baseURL,
		httpClient: robustClient,
		// The proxy is ours; two requests a second with a small burst is
		// plenty for a single page and keeps refill storms off it.
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

// NewProxyClientWithHTTP creates a client with a caller-supplied http.Client.
// Used by tests to point at an httptest server.
func NewProxyClientWithHTTP(baseURL string, httpClient *http.Client) *ProxyClient {
	return &ProxyClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

// Get issues a paced GET against /api/{providerPath} with the given params.
// The caller owns the response body.
func (c *ProxyClient) Get(ctx context.Context, providerPath string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy base URL: %w", err)
	}
	u.Path = "/api/" + providerPath
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.httpClient.Do(req)
}

// HTTPClient exposes the underlying client for non-proxy fetches (image
// preloading uses the same dialer tuning).
func (c *ProxyClient) HTTPClient() *http.Client {
	return c.httpClient
}

package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dixieflatline76/Lumen/pkg/background"
	"github.com/dixieflatline76/Lumen/pkg/provider"
	"github.com/dixieflatline76/Lumen/util/log"
)

// Provider implements the primary-search variant against the Unsplash
// endpoint of the backend proxy.
type Provider struct {
	client *provider.ProxyClient
	limits *provider.RateLimitTracker
}

func init() {
	background.RegisterProvider(provider.NameUnsplash, func(client *provider.ProxyClient) provider.Provider {
		return New(client)
	})
}

// New creates a new Unsplash provider with a fresh rate-limit tracker.
func New(client *provider.ProxyClient) *Provider {
	return &Provider{
		client: client,
		limits: provider.NewRateLimitTracker(AssumedCeiling),
	}
}

func (p *Provider) Name() string {
	return provider.NameUnsplash
}

// CheckRateLimit reports whether a batch request may be issued right now.
func (p *Provider) CheckRateLimit() bool {
	return p.limits.Check()
}

// Limits exposes the tracker for tests.
func (p *Provider) Limits() *provider.RateLimitTracker {
	return p.limits
}

// unsplashPhoto is the subset of the search response this service consumes.
type unsplashPhoto struct {
	URLs struct {
		Regular string `json:"regular"`
		Full    string `json:"full"`
	} `json:"urls"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
}

// GetImageBatch fetches up to count candidate images for the query.
func (p *Provider) GetImageBatch(ctx context.Context, query string, count int) ([]provider.ImageRecord, error) {
	if count < 1 {
		count = 1
	}
	if count > MaxPerPage {
		count = MaxPerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "landscape")
	params.Set("count", strconv.Itoa(count))

	resp, err := p.client.Get(ctx, provider.NameUnsplash, params)
	if err != nil {
		return nil, &provider.ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusTooManyRequests, http.StatusForbidden:
		// Unsplash reports quota exhaustion as 403 on the demo tier.
		p.limits.MarkLimited(provider.ResetFromHeaders(resp.Header, time.Now()))
		return nil, &provider.RateLimitedError{Provider: p.Name(), ResetAt: p.limits.ResetAt()}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("Unsplash API error [status %d]: %s", resp.StatusCode, string(body))
		return nil, &provider.ProviderError{Provider: p.Name(), Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	p.limits.Consume()
	p.limits.Observe(resp.Header)

	var photos []unsplashPhoto
	if err := json.NewDecoder(resp.Body).Decode(&photos); err != nil {
		log.Printf("Unsplash: malformed response body, treating as empty: %v", err)
		return []provider.ImageRecord{}, nil
	}

	records := make([]provider.ImageRecord, 0, len(photos))
	for _, photo := range photos {
		imageURL := photo.URLs.Regular
		if imageURL == "" {
			imageURL = photo.URLs.Full
		}
		if imageURL == "" || photo.User.Name == "" {
			log.Debugf("Unsplash: dropping record with missing url or author")
			continue
		}
		records = append(records, provider.ImageRecord{
			URL:        imageURL,
			AuthorName: photo.User.Name,
			AuthorURL:  photo.User.Links.HTML,
			Source:     p.Name(),
		})
	}
	return records, nil
}

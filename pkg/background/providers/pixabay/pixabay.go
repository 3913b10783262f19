package pixabay

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

// Provider implements the tag-search variant against the Pixabay endpoint
// of the backend proxy.
type Provider struct {
	client *provider.ProxyClient
	limits *provider.RateLimitTracker
}

func init() {
	background.RegisterProvider(provider.NamePixabay, func(client *provider.ProxyClient) provider.Provider {
		return New(client)
	})
}

// New creates a new Pixabay provider with a fresh rate-limit tracker.
func New(client *provider.ProxyClient) *Provider {
	return &Provider{
		client: client,
		limits: provider.NewRateLimitTracker(AssumedCeiling),
	}
}

func (p *Provider) Name() string {
	return provider.NamePixabay
}

// CheckRateLimit reports whether a batch request may be issued right now.
func (p *Provider) CheckRateLimit() bool {
	return p.limits.Check()
}

// Limits exposes the tracker for tests.
func (p *Provider) Limits() *provider.RateLimitTracker {
	return p.limits
}

type pixabayResponse struct {
	Hits []pixabayHit `json:"hits"`
}

type pixabayHit struct {
	LargeImageURL string `json:"largeImageURL"`
	User          string `json:"user"`
	PageURL       string `json:"pageURL"`
}

// GetImageBatch fetches up to count candidate images for the tag query.
func (p *Provider) GetImageBatch(ctx context.Context, query string, count int) ([]provider.ImageRecord, error) {
	if count < 1 {
		count = 1
	}
	if count > MaxPerPage {
		count = MaxPerPage
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("orientation", "horizontal")

	resp, err := p.client.Get(ctx, provider.NamePixabay, params)
	if err != nil {
		return nil, &provider.ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusTooManyRequests:
		p.limits.MarkLimited(provider.ResetFromHeaders(resp.Header, time.Now()))
		return nil, &provider.RateLimitedError{Provider: p.Name(), ResetAt: p.limits.ResetAt()}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("Pixabay API error [status %d]: %s", resp.StatusCode, string(body))
		return nil, &provider.ProviderError{Provider: p.Name(), Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	p.limits.Consume()
	p.limits.Observe(resp.Header)

	var pixResp pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&pixResp); err != nil {
		log.Printf("Pixabay: malformed response body, treating as empty: %v", err)
		return []provider.ImageRecord{}, nil
	}

	records := make([]provider.ImageRecord, 0, len(pixResp.Hits))
	for _, hit := range pixResp.Hits {
		if hit.LargeImageURL == "" || hit.User == "" {
			log.Debugf("Pixabay: dropping record with missing url or author")
			continue
		}
		records = append(records, provider.ImageRecord{
			URL:        hit.LargeImageURL,
			AuthorName: hit.User,
			AuthorURL:  hit.PageURL,
			Source:     p.Name(),
		})
	}
	return records, nil
}

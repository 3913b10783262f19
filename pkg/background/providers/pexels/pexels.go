package pexels

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

// Provider implements the secondary-search variant against the Pexels
// endpoint of the backend proxy.
type Provider struct {
	client *provider.ProxyClient
	limits *provider.RateLimitTracker
}

func init() {
	background.RegisterProvider(provider.NamePexels, func(client *provider.ProxyClient) provider.Provider {
		return New(client)
	})
}

// New creates a new Pexels provider with a fresh rate-limit tracker.
func New(client *provider.ProxyClient) *Provider {
	return &Provider{
		client: client,
		limits: provider.NewRateLimitTracker(AssumedCeiling),
	}
}

func (p *Provider) Name() string {
	return provider.NamePexels
}

// CheckRateLimit reports whether a batch request may be issued right now.
func (p *Provider) CheckRateLimit() bool {
	return p.limits.Check()
}

// Limits exposes the tracker for tests.
func (p *Provider) Limits() *provider.RateLimitTracker {
	return p.limits
}

// Pexels JSON structures

type pexelsSearchResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

type pexelsPhoto struct {
	Photographer    string    `json:"photographer"`
	PhotographerURL string    `json:"photographer_url"`
	Src             pexelsSrc `json:"src"`
}

type pexelsSrc struct {
	Original string `json:"original"`
	Large2x  string `json:"large2x"`
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
	params.Set("per_page", strconv.Itoa(count))

	resp, err := p.client.Get(ctx, provider.NamePexels, params)
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
		log.Printf("Pexels API error [status %d]: %s", resp.StatusCode, string(body))
		return nil, &provider.ProviderError{Provider: p.Name(), Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	p.limits.Consume()
	p.limits.Observe(resp.Header)

	var searchResp pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		log.Printf("Pexels: malformed response body, treating as empty: %v", err)
		return []provider.ImageRecord{}, nil
	}

	records := make([]provider.ImageRecord, 0, len(searchResp.Photos))
	for _, photo := range searchResp.Photos {
		// Prefer large2x for page backgrounds; original can be enormous.
		imageURL := photo.Src.Large2x
		if imageURL == "" {
			imageURL = photo.Src.Original
		}
		if imageURL == "" || photo.Photographer == "" {
			log.Debugf("Pexels: dropping record with missing url or author")
			continue
		}
		records = append(records, provider.ImageRecord{
			URL:        imageURL,
			AuthorName: photo.Photographer,
			AuthorURL:  photo.PhotographerURL,
			Source:     p.Name(),
		})
	}
	return records, nil
}

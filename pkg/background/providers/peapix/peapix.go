package peapix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dixieflatline76/Lumen/pkg/background"
	"github.com/dixieflatline76/Lumen/pkg/provider"
	"github.com/dixieflatline76/Lumen/util/log"
)

// Provider implements the daily-feed variant against the Peapix endpoint of
// the backend proxy. The feed serves "today's image": the query argument is
// interpreted as an optional country code, batches are always one record
// long, and no rate-limit bookkeeping exists for it.
type Provider struct {
	client *provider.ProxyClient
}

func init() {
	background.RegisterProvider(provider.NamePeapix, func(client *provider.ProxyClient) provider.Provider {
		return New(client)
	})
}

// New creates a new Peapix provider.
func New(client *provider.ProxyClient) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string {
	return provider.NamePeapix
}

// CheckRateLimit always reports available; the daily feed is not metered.
func (p *Provider) CheckRateLimit() bool {
	return true
}

type peapixEntry struct {
	FullURL   string `json:"fullUrl"`
	Title     string `json:"title"`
	Copyright string `json:"copyright"`
	PageURL   string `json:"pageUrl"`
}

// GetImageBatch returns today's image as a single-element batch, regardless
// of the requested count.
func (p *Provider) GetImageBatch(ctx context.Context, country string, _ int) ([]provider.ImageRecord, error) {
	params := url.Values{}
	if country != "" {
		params.Set("country", country)
	}

	resp, err := p.client.Get(ctx, provider.NamePeapix, params)
	if err != nil {
		return nil, &provider.ProviderError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("Peapix API error [status %d]: %s", resp.StatusCode, string(body))
		return nil, &provider.ProviderError{Provider: p.Name(), Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	var entries []peapixEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		log.Printf("Peapix: malformed response body, treating as empty: %v", err)
		return []provider.ImageRecord{}, nil
	}

	for _, entry := range entries {
		author := entry.Copyright
		if author == "" {
			author = entry.Title
		}
		if entry.FullURL == "" || author == "" {
			continue
		}
		return []provider.ImageRecord{{
			URL:        entry.FullURL,
			AuthorName: author,
			AuthorURL:  entry.PageURL,
			Source:     p.Name(),
		}}, nil
	}
	return []provider.ImageRecord{}, nil
}

// Package favorites reads the user's saved images from the local
// favorites service so the engine can run in favorites-only mode.
package favorites

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/dixieflatline76/Lumen/pkg/provider"
	"github.com/dixieflatline76/Lumen/util/log"
)

// SourceName tags records that came from the favorites service.
const SourceName = "favorites"

// DefaultTTL is how long a fetched favorites listing is trusted before the
// next read re-fetches it.
const DefaultTTL = 30 * time.Second

const fetchTimeout = 10 * time.Second

// entry is the favorites service's record shape.
type entry struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	ProductURL  string `json:"product_url"`
}

// Client is a TTL-cached reader of the local favorites service. It
// implements background.FavoritesSource. The service being down is
// equivalent to having no favorites; the engine then falls through to the
// provider path.
type Client struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	cached    []provider.ImageRecord
	fetchedAt time.Time
}

// NewClient creates a favorites reader for the given listing URL.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
}

// Count returns how many favorites exist right now.
func (c *Client) Count() int {
	return len(c.records())
}

// Random returns a uniformly random favorite, or false when empty.
func (c *Client) Random() (provider.ImageRecord, bool) {
	recs := c.records()
	if len(recs) == 0 {
		return provider.ImageRecord{}, false
	}
	return recs[rand.Intn(len(recs))], true
}

// records returns the cached listing, re-fetching when stale. A failed
// fetch keeps serving the previous listing rather than flapping to empty.
func (c *Client) records() []provider.ImageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.now().Sub(c.fetchedAt) < c.ttl {
		return c.cached
	}

	recs, err := c.fetch()
	if err != nil {
		log.Debugf("Favorites fetch failed, keeping cached listing: %v", err)
		// Back off for a full TTL either way.
		c.fetchedAt = c.now()
		return c.cached
	}

	c.cached = recs
	c.fetchedAt = c.now()
	return c.cached
}

func (c *Client) fetch() ([]provider.ImageRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	recs := make([]provider.ImageRecord, 0, len(entries))
	for _, e := range entries {
		if e.URL == "" {
			continue
		}
		recs = append(recs, provider.ImageRecord{
			URL:        e.URL,
			AuthorName: e.Attribution,
			AuthorURL:  e.ProductURL,
			Source:     SourceName,
		})
	}
	return recs, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}

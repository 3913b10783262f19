package provider

import "context"

// Canonical provider names. These double as the config "provider" values
// persisted by the page and as the proxy path segments.
const (
	NameUnsplash = "unsplash"
	NamePexels   = "pexels"
	NamePixabay  = "pixabay"
	NamePeapix   = "peapix"
)

// ImageRecord is a single candidate background image as produced by a
// provider. It has no identity beyond its URL and is never deduplicated.
type ImageRecord struct {
	URL        string
	AuthorName string
	AuthorURL  string
	Source     string // Provider name that produced the record
}

// Provider is the uniform contract over the external image sources.
// Implementations call a fixed backend-proxy path and never hold a
// credential themselves.
type Provider interface {
	// Name returns the canonical provider name.
	Name() string
	// GetImageBatch fetches up to count candidate images for a query.
	// Count is a hint; providers cap it to their own page size. The
	// daily-feed provider ignores the query and returns a single record.
	GetImageBatch(ctx context.Context, query string, count int) ([]ImageRecord, error)
	// CheckRateLimit reports whether a batch request may be issued right
	// now. Callers must check this before calling GetImageBatch; a false
	// result stands in for a RateLimited failure without a network call.
	CheckRateLimit() bool
}

// GetImage fetches a single image: the first record of a batch of one,
// or nil if the provider returned nothing.
func GetImage(ctx context.Context, p Provider, query string) (*ImageRecord, error) {
	batch, err := p.GetImageBatch(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}
	return &batch[0], nil
}

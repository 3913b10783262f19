package peapix

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dixieflatline76/Lumen/pkg/provider"
)

func newTestProvider(handler http.HandlerFunc) (*Provider, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := provider.NewProxyClientWithHTTP(server.URL, server.Client())
	return New(client), server
}

func TestGetImageBatchReturnsSingleRecord(t *testing.T) {
	var gotPath, gotCountry string

	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCountry = r.URL.Query().Get("country")
		w.Write([]byte(`[
			{"fullUrl":"https://img/today","title":"Sunrise","copyright":"© Hana","pageUrl":"https://p/today"},
			{"fullUrl":"https://img/yesterday","title":"Dusk","copyright":"© Ivo","pageUrl":"https://p/yesterday"}
		]`))
	})
	defer server.Close()

	records, err := p.GetImageBatch(context.Background(), "jp", 10)
	assert.NoError(t, err)

	assert.Equal(t, "/api/peapix", gotPath)
	assert.Equal(t, "jp", gotCountry)

	// The feed is "today's image": one record no matter the count asked for.
	assert.Len(t, records, 1)
	assert.Equal(t, provider.ImageRecord{
		URL:        "https://img/today",
		AuthorName: "© Hana",
		AuthorURL:  "https://p/today",
		Source:     provider.NamePeapix,
	}, records[0])
}

func TestGetImageBatchFallsBackToTitle(t *testing.T) {
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"fullUrl":"https://img/today","title":"Sunrise","pageUrl":"https://p/today"}]`))
	})
	defer server.Close()

	records, err := p.GetImageBatch(context.Background(), "", 1)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "Sunrise", records[0].AuthorName)
}

func TestGetImageBatchNeverRateLimits(t *testing.T) {
	// The daily feed has no quota; even a 429 surfaces as a plain provider
	// failure so it never triggers fallback bookkeeping.
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := p.GetImageBatch(context.Background(), "us", 1)
	assert.Error(t, err)
	assert.False(t, provider.IsRateLimited(err))
	assert.True(t, p.CheckRateLimit())
}

func TestGetImageBatchEmptyFeed(t *testing.T) {
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	records, err := p.GetImageBatch(context.Background(), "", 1)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

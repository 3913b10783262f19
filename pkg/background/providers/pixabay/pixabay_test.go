package pixabay

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

func TestGetImageBatchMapsRecords(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"hits":[
			{"largeImageURL":"https://img/1","user":"Finn","pageURL":"https://p/1"},
			{"largeImageURL":"","user":"Gus","pageURL":"https://p/2"},
			{"largeImageURL":"https://img/3","user":"","pageURL":"https://p/3"}
		]}`))
	})
	defer server.Close()

	records, err := p.GetImageBatch(context.Background(), "forest", 20)
	assert.NoError(t, err)

	assert.Equal(t, "/api/pixabay", gotPath)
	assert.Equal(t, "forest", gotQuery["q"][0])
	assert.Equal(t, "horizontal", gotQuery["orientation"][0])

	assert.Len(t, records, 1)
	assert.Equal(t, provider.ImageRecord{
		URL:        "https://img/1",
		AuthorName: "Finn",
		AuthorURL:  "https://p/1",
		Source:     provider.NamePixabay,
	}, records[0])
}

func TestGetImageBatchRateLimited(t *testing.T) {
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := p.GetImageBatch(context.Background(), "q", 5)
	assert.True(t, provider.IsRateLimited(err))
	assert.False(t, p.CheckRateLimit())
}

func TestGetImageBatchMalformedBody(t *testing.T) {
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[[`))
	})
	defer server.Close()

	records, err := p.GetImageBatch(context.Background(), "q", 5)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

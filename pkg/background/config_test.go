package background

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dixieflatline76/Lumen/pkg/provider"
)

func TestEffectiveQuery(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "search provider uses the free-text query",
			cfg:  Config{Provider: provider.NameUnsplash, Query: "mountains", PeapixCountry: "jp"},
			want: "mountains",
		},
		{
			name: "daily feed uses the country code",
			cfg:  Config{Provider: provider.NamePeapix, Query: "mountains", PeapixCountry: "jp"},
			want: "jp",
		},
		{
			name: "daily feed with no country",
			cfg:  Config{Provider: provider.NamePeapix, Query: "mountains"},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.EffectiveQuery())
		})
	}
}

func TestQueryKey(t *testing.T) {
	a := Config{Provider: provider.NameUnsplash, Query: "mountains"}
	b := Config{Provider: provider.NameUnsplash, Query: "mountains", ZoomEnabled: true, CycleInterval: 5000}
	c := Config{Provider: provider.NamePexels, Query: "mountains"}
	d := Config{Provider: provider.NameUnsplash, Query: "ocean"}

	// Visual and cadence settings do not scope the cache.
	assert.Equal(t, a.QueryKey(), b.QueryKey())
	assert.NotEqual(t, a.QueryKey(), c.QueryKey())
	assert.NotEqual(t, a.QueryKey(), d.QueryKey())

	// For the daily feed the country is the scoping term.
	p1 := Config{Provider: provider.NamePeapix, PeapixCountry: "jp"}
	p2 := Config{Provider: provider.NamePeapix, PeapixCountry: "us"}
	assert.NotEqual(t, p1.QueryKey(), p2.QueryKey())
}

func TestNewHandlerValidation(t *testing.T) {
	deps, _, _ := newTestDeps(map[string]provider.Provider{}, nil)

	_, err := newHandler(Config{Type: TypeImage, Provider: "flickr"}, deps)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = newHandler(Config{Type: "gradient"}, deps)
	assert.ErrorAs(t, err, &cfgErr)

	h, err := newHandler(Config{Type: TypeColor}, deps)
	assert.NoError(t, err)
	assert.Equal(t, TypeColor, h.Type())
}

package background

import (
	"fmt"

	"github.com/dixieflatline76/Lumen/pkg/provider"
)

// Type identifies the active background strategy.
type Type string

// Background strategy types as persisted by the page.
const (
	TypeImage   Type = "image"
	TypeColor   Type = "color"
	TypeYouTube Type = "youtube"
)

// DefaultColor is used when the color strategy has no configured color.
const DefaultColor = "#000000"

// Config is an immutable snapshot of the background sub-tree of the
// external store. The engine never mutates one; it only derives processed
// copies.
type Config struct {
	Type             Type    `json:"type"`
	Query            string  `json:"query"`
	Provider         string  `json:"provider"`
	Color            string  `json:"color"`
	OverlayOpacity   float64 `json:"overlayOpacity"`
	ZoomEnabled      bool    `json:"zoomEnabled"`
	CycleEnabled     bool    `json:"cycleEnabled"`
	CycleInterval    int     `json:"cycleInterval"` // milliseconds
	UseFavoritesOnly bool    `json:"useFavoritesOnly"`
	PeapixCountry    string  `json:"peapixCountry"`
	YouTubeVideoID   string  `json:"youtubeVideoId"`
	YouTubeQuality   string  `json:"youtubeQuality"`
}

// EffectiveQuery returns the query string actually sent to the configured
// provider. The daily feed ignores free-text queries and takes a country
// code instead.
func (c Config) EffectiveQuery() string {
	if c.Provider == provider.NamePeapix {
		return c.PeapixCountry
	}
	return c.Query
}

// QueryKey returns the normalized provider/query/region tuple that scopes
// an image cache. Changing it invalidates the cache.
func (c Config) QueryKey() string {
	return fmt.Sprintf("%s|%s", c.Provider, c.EffectiveQuery())
}

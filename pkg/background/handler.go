package background

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dixieflatline76/Lumen/pkg/provider"
)

// ConfigurationError signals a config the engine cannot act on, such as an
// unrecognized provider name. The orchestrator substitutes the color
// strategy rather than failing.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// StrategyHandler is the contract every background strategy implements.
// Exactly one handler is active at a time; it has exclusive use of the
// render surfaces until destroyed. Acquisition failures never escape a
// handler: on total failure the last successfully displayed background
// stays up.
type StrategyHandler interface {
	// Type returns the variant tag this handler was constructed for.
	Type() Type
	// Init performs the first paint. For the image strategy this is the
	// initial acquisition, composited without a crossfade.
	Init(ctx context.Context)
	// Update applies a new config snapshot of the same type.
	Update(ctx context.Context, cfg Config)
	// Refresh advances to the next background where the strategy has a
	// notion of "next"; otherwise it is a no-op.
	Refresh(ctx context.Context)
	// Destroy drops all handler state and detaches from the surfaces. It
	// does not touch the external store.
	Destroy()
}

// recordApplier is implemented by handlers that can display a specific
// ready-made record (used when the user promotes a favorite).
type recordApplier interface {
	ApplyRecord(ctx context.Context, rec provider.ImageRecord)
}

// videoEndedHandler is implemented by handlers that care about the page's
// video-ended signal.
type videoEndedHandler interface {
	OnVideoEnded()
}

// Deps bundles the collaborators the orchestrator lends to its handlers.
type Deps struct {
	Surfaces  *SurfacePair
	Overlay   *Overlay
	Renderer  Renderer
	Store     Store
	Providers map[string]provider.Provider
	Favorites FavoritesSource
	Client    *http.Client // used for image preloading
}

// newHandler constructs the handler variant for the config. The switch on
// the variant tag happens here, exactly once per construction.
func newHandler(cfg Config, deps Deps) (StrategyHandler, error) {
	switch cfg.Type {
	case TypeImage:
		if _, ok := deps.Providers[cfg.Provider]; !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unrecognized provider %q", cfg.Provider)}
		}
		return newImageHandler(cfg, deps), nil
	case TypeColor:
		return newColorHandler(cfg, deps), nil
	case TypeYouTube:
		if cfg.YouTubeVideoID == "" {
			return nil, &ConfigurationError{Reason: "youtube background without a video id"}
		}
		return newVideoHandler(cfg, deps), nil
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unrecognized background type %q", cfg.Type)}
	}
}

package background

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dixieflatline76/Lumen/pkg/provider"
	"github.com/dixieflatline76/Lumen/util/log"
	"golang.org/x/sync/singleflight"
)

const (
	// RefillLowWater is the cache size at or below which a background
	// refill is issued after consuming a record. Zero means "refill when
	// the cache just went empty"; kept in one place so it can become a
	// tunable later.
	RefillLowWater = 0

	// batchSize is the count hint sent with batch requests.
	batchSize = 10

	refillTimeout   = 45 * time.Second
	preloadMaxBytes = 50 * 1024 * 1024
)

// fallbackOrder is the fixed priority order consulted when the selected
// provider is rate limited. The daily feed never rate-limits and never
// serves as a fallback, so it is absent.
var fallbackOrder = []string{provider.NameUnsplash, provider.NamePexels, provider.NamePixabay}

// imageHandler implements the image strategy: per-key cache with FIFO
// consumption, inline acquisition with single-provider fallback, preload
// before crossfade, and a proactive background refill.
type imageHandler struct {
	deps Deps

	loadMu sync.Mutex // serializes foreground swaps; crossfades are strictly one at a time

	mu       sync.Mutex // guards cfg, cacheKey, caches
	cfg      Config
	cacheKey string
	caches   map[string][]provider.ImageRecord

	refill singleflight.Group
}

func newImageHandler(cfg Config, deps Deps) *imageHandler {
	return &imageHandler{
		deps:     deps,
		cfg:      cfg,
		cacheKey: cfg.QueryKey(),
		caches:   make(map[string][]provider.ImageRecord),
	}
}

func (h *imageHandler) Type() Type {
	return TypeImage
}

// Init performs the first acquisition and composites directly onto the
// active surface; there is nothing sensible to fade from yet.
func (h *imageHandler) Init(ctx context.Context) {
	h.loadImage(ctx, true)
}

// Refresh advances to the next image with a crossfade.
func (h *imageHandler) Refresh(ctx context.Context) {
	h.loadImage(ctx, false)
}

// Update applies a new config snapshot. A changed query key invalidates
// the whole cache before any fetch; a zoom-only change is applied to the
// active surface without re-fetching.
func (h *imageHandler) Update(ctx context.Context, cfg Config) {
	h.mu.Lock()
	old := h.cfg
	newKey := cfg.QueryKey()
	keyChanged := newKey != h.cacheKey
	h.cfg = cfg
	if keyChanged {
		// Full invalidation. A stale in-flight refill still lands in its
		// own (now unused) bucket, never in the new key's.
		h.caches = make(map[string][]provider.ImageRecord)
		h.cacheKey = newKey
	}
	h.mu.Unlock()

	if keyChanged || old.UseFavoritesOnly != cfg.UseFavoritesOnly {
		h.loadImage(ctx, false)
		return
	}

	// Purely visual changes are applied without a re-fetch.
	repaint := false
	if old.ZoomEnabled != cfg.ZoomEnabled && h.deps.Surfaces.SetActiveZoom(cfg.ZoomEnabled) {
		repaint = true
	}
	if old.Color != cfg.Color || old.OverlayOpacity != cfg.OverlayOpacity {
		repaint = true
	}
	if repaint {
		h.deps.Renderer.RenderFrame(BuildFrame(h.deps.Surfaces, h.deps.Overlay, nil))
	}
}

// Destroy drops all cache state and detaches from the surfaces. The
// external store is left untouched.
func (h *imageHandler) Destroy() {
	h.mu.Lock()
	h.caches = nil
	h.cacheKey = ""
	h.mu.Unlock()
}

// ApplyRecord displays a specific ready-made record (a promoted favorite)
// with the usual preload and crossfade.
func (h *imageHandler) ApplyRecord(ctx context.Context, rec provider.ImageRecord) {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	if err := h.preload(ctx, rec.URL); err != nil {
		log.Printf("Preload failed for applied record %s: %v", rec.URL, err)
		return
	}

	h.mu.Lock()
	cfg := h.cfg
	h.mu.Unlock()

	h.composite(rec, cfg, false)
	h.deps.Store.PublishCurrentImage(CurrentMeta{Type: TypeImage, URL: rec.URL, Source: rec.Source})
}

// loadImage is the shared foreground path for init, cycling and refresh.
// On total acquisition failure the last successfully displayed background
// stays up and no metadata is published.
func (h *imageHandler) loadImage(ctx context.Context, initial bool) {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	h.mu.Lock()
	cfg := h.cfg
	key := h.cacheKey
	h.mu.Unlock()

	rec, ok := h.nextRecord(ctx, cfg, key)
	if !ok {
		return
	}

	if err := h.preload(ctx, rec.URL); err != nil {
		log.Printf("Image preload failed for %s: %v", rec.URL, err)
		return
	}

	h.composite(rec, cfg, initial)
	h.deps.Store.PublishCurrentImage(CurrentMeta{Type: TypeImage, URL: rec.URL, Source: rec.Source})
}

// nextRecord resolves the record to display: favorites short-circuit,
// warm cache pop, or inline cold fetch.
func (h *imageHandler) nextRecord(ctx context.Context, cfg Config, key string) (provider.ImageRecord, bool) {
	if res := h.resolveSource(cfg); res.shortCircuit() {
		return *res.record, true
	}

	h.mu.Lock()
	bucket := h.caches[key]
	if len(bucket) > 0 {
		rec := bucket[0]
		h.caches[key] = bucket[1:]
		remaining := len(h.caches[key])
		h.mu.Unlock()
		if remaining <= RefillLowWater {
			go h.refillCache(key, cfg)
		}
		return rec, true
	}
	h.mu.Unlock()

	batch, err := h.fetchImageBatch(ctx, cfg)
	if err != nil {
		log.Printf("Image acquisition failed: %v", err)
		return provider.ImageRecord{}, false
	}
	if len(batch) == 0 {
		log.Printf("Image acquisition returned no records for key %s", key)
		return provider.ImageRecord{}, false
	}

	rec := batch[0]
	h.mu.Lock()
	if h.caches != nil {
		h.caches[key] = append(h.caches[key], batch[1:]...)
	}
	remaining := len(h.caches[key])
	h.mu.Unlock()
	if remaining <= RefillLowWater {
		go h.refillCache(key, cfg)
	}
	return rec, true
}

// resolveSource decides between a ready-made favorite and the provider
// path. Favorites win whenever favorites-only mode is on and the service
// has entries.
func (h *imageHandler) resolveSource(cfg Config) sourceResolution {
	if !cfg.UseFavoritesOnly || h.deps.Favorites == nil {
		return sourceResolution{}
	}
	if h.deps.Favorites.Count() == 0 {
		return sourceResolution{}
	}
	rec, ok := h.deps.Favorites.Random()
	if !ok {
		return sourceResolution{}
	}
	return sourceResolution{record: &rec}
}

// fetchImageBatch acquires a batch from the selected provider, retrying
// exactly one fallback provider when the selection is rate limited.
func (h *imageHandler) fetchImageBatch(ctx context.Context, cfg Config) ([]provider.ImageRecord, error) {
	primary, ok := h.deps.Providers[cfg.Provider]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unrecognized provider %q", cfg.Provider)}
	}

	batch, err := h.fetchFrom(ctx, primary, cfg.EffectiveQuery())
	if err == nil {
		return batch, nil
	}
	if !provider.IsRateLimited(err) {
		return nil, err
	}

	fallback := h.pickFallback(primary.Name())
	if fallback == nil {
		log.Printf("%s rate limited and no fallback provider available", primary.Name())
		return nil, err
	}
	log.Printf("%s rate limited, falling back to %s: %v", primary.Name(), fallback.Name(), err)

	// Fallbacks are search providers; they take the configured query,
	// not the daily-feed country code.
	return h.fetchFrom(ctx, fallback, cfg.Query)
}

func (h *imageHandler) fetchFrom(ctx context.Context, p provider.Provider, query string) ([]provider.ImageRecord, error) {
	if !p.CheckRateLimit() {
		// Locally predicted exhaustion; skip the network call entirely.
		return nil, &provider.RateLimitedError{Provider: p.Name(), ResetAt: time.Now().Add(provider.DefaultBackoffWindow)}
	}
	return p.GetImageBatch(ctx, query, batchSize)
}

// pickFallback returns the first provider in the fixed priority order
// other than the one that just failed.
func (h *imageHandler) pickFallback(failed string) provider.Provider {
	for _, name := range fallbackOrder {
		if name == failed {
			continue
		}
		if p, ok := h.deps.Providers[name]; ok {
			return p
		}
	}
	return nil
}

// refillCache repopulates the bucket for key in the background so the next
// foreground load rarely pays network latency. Deduplicated per key; its
// completion only ever appends, never replaces what is displayed.
func (h *imageHandler) refillCache(key string, cfg Config) {
	h.refill.Do(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), refillTimeout)
		defer cancel()

		batch, err := h.fetchImageBatch(ctx, cfg)
		if err != nil {
			log.Printf("Background refill for key %s failed: %v", key, err)
			return nil, nil
		}

		h.mu.Lock()
		if h.caches != nil {
			// Results land in the bucket for the key that requested
			// them, even if the active key has moved on since.
			h.caches[key] = append(h.caches[key], batch...)
		}
		h.mu.Unlock()
		log.Debugf("Refilled cache for key %s with %d records", key, len(batch))
		return nil, nil
	})
}

// preload pulls the image through before it is swapped onto a surface so
// the page never flashes a broken or partially loaded background. With no
// client configured the step is skipped.
func (h *imageHandler) preload(ctx context.Context, imageURL string) error {
	if h.deps.Client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := h.deps.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("preload returned status %d", resp.StatusCode)
	}
	// Pull the body through so the page's own request hits a warm cache.
	_, err = io.Copy(io.Discard, io.LimitReader(resp.Body, preloadMaxBytes))
	return err
}

// composite paints the record and pushes a frame. Initial paints go
// straight onto the active surface; everything else crossfades.
func (h *imageHandler) composite(rec provider.ImageRecord, cfg Config, initial bool) {
	if initial {
		h.deps.Surfaces.SetActiveImage(rec.URL, cfg.ZoomEnabled)
	} else {
		h.deps.Surfaces.StageAndSwap(rec.URL, cfg.ZoomEnabled)
	}
	h.deps.Renderer.RenderFrame(BuildFrame(h.deps.Surfaces, h.deps.Overlay, nil))
}

// cacheLen reports the current bucket size for a key. Test hook.
func (h *imageHandler) cacheLen(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.caches[key])
}

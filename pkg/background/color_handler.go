package background

import "context"

// colorHandler implements the solid-color strategy. It is also the
// substitute of last resort: the orchestrator falls back to it whenever an
// image or video config cannot be acted on.
type colorHandler struct {
	deps Deps
	cfg  Config
}

func newColorHandler(cfg Config, deps Deps) *colorHandler {
	return &colorHandler{deps: deps, cfg: cfg}
}

func colorOrDefault(c string) string {
	if c == "" {
		return DefaultColor
	}
	return c
}

func (h *colorHandler) Type() Type {
	return TypeColor
}

// Init clears any image styling and paints directly. A solid color has no
// loading latency, so there is nothing to crossfade from or preload.
func (h *colorHandler) Init(ctx context.Context) {
	h.deps.Surfaces.Reset()
	h.paint()
}

func (h *colorHandler) Update(ctx context.Context, cfg Config) {
	changed := colorOrDefault(cfg.Color) != colorOrDefault(h.cfg.Color) ||
		cfg.OverlayOpacity != h.cfg.OverlayOpacity
	h.cfg = cfg
	if changed {
		h.paint()
	}
}

// Refresh is a no-op; a solid color has no notion of "next".
func (h *colorHandler) Refresh(ctx context.Context) {}

func (h *colorHandler) Destroy() {}

// paint colors both surfaces at once; there is no latency to hide, so no
// crossfade.
func (h *colorHandler) paint() {
	h.deps.Surfaces.SetColor(colorOrDefault(h.cfg.Color))
	h.deps.Renderer.RenderFrame(BuildFrame(h.deps.Surfaces, h.deps.Overlay, nil))
}

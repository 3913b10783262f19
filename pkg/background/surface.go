package background

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MissingSurfaceError is raised when the render surfaces are absent at
// construction time. There is nothing meaningful to render without them,
// so this is fatal.
type MissingSurfaceError struct {
	What string
}

func (e *MissingSurfaceError) Error() string {
	return fmt.Sprintf("required render surface missing: %s", e.What)
}

// Surface is one of the two interchangeable visual containers a background
// is painted onto. The pair exists so image changes can crossfade instead
// of cutting.
type Surface struct {
	ImageURL string  `json:"imageUrl,omitempty"`
	Color    string  `json:"color,omitempty"`
	Zoom     bool    `json:"zoom,omitempty"`
	Opacity  float64 `json:"opacity"`
}

// SetImage points the surface at an image URL and applies the zoom toggle.
// Any solid color styling is dropped.
func (s *Surface) SetImage(url string, zoom bool) {
	s.ImageURL = url
	s.Zoom = zoom
	s.Color = ""
}

// SetColor paints the surface a solid color, clearing any image styling.
func (s *Surface) SetColor(color string) {
	s.Color = color
	s.ImageURL = ""
	s.Zoom = false
}

// ClearImage removes image styling without touching opacity.
func (s *Surface) ClearImage() {
	s.ImageURL = ""
	s.Zoom = false
}

// SurfacePair owns the two render surfaces. Exactly one is active
// (opacity 1, foreground) at steady state; the other is inactive
// (opacity 0, background). The pair is owned by the orchestrator and lent
// to the active strategy handler; the orchestrator and the cycling
// scheduler touch it from different goroutines, so every access goes
// through the pair's own lock and callers only ever see copies.
type SurfacePair struct {
	mu       sync.Mutex
	surfaces [2]Surface
	active   int
}

// NewSurfacePair creates a pair with surface A active and opaque.
func NewSurfacePair() *SurfacePair {
	sp := &SurfacePair{}
	sp.surfaces[0].Opacity = 1
	return sp
}

// Active returns a copy of the currently visible surface.
func (sp *SurfacePair) Active() Surface {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.surfaces[sp.active]
}

// Inactive returns a copy of the hidden surface.
func (sp *SurfacePair) Inactive() Surface {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.surfaces[1-sp.active]
}

// ActiveIndex returns which surface is currently tracked as active.
func (sp *SurfacePair) ActiveIndex() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.active
}

// SetActiveImage paints an image straight onto the visible surface, used
// for the first paint where there is nothing to fade from.
func (sp *SurfacePair) SetActiveImage(url string, zoom bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.surfaces[sp.active].SetImage(url, zoom)
}

// StageImage paints an image onto the hidden surface in preparation for a
// Swap.
func (sp *SurfacePair) StageImage(url string, zoom bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.surfaces[1-sp.active].SetImage(url, zoom)
}

// SetActiveZoom toggles the zoom effect on the visible surface without
// touching anything else. Reports false when no image is up, in which case
// there is nothing to repaint.
func (sp *SurfacePair) SetActiveZoom(zoom bool) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.surfaces[sp.active].ImageURL == "" {
		return false
	}
	sp.surfaces[sp.active].Zoom = zoom
	return true
}

// SetColor paints both surfaces the same solid color at once; a color
// change has no latency to hide, so there is no crossfade.
func (sp *SurfacePair) SetColor(color string) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.surfaces[0].SetColor(color)
	sp.surfaces[1].SetColor(color)
}

// ClearImages removes image styling from both surfaces.
func (sp *SurfacePair) ClearImages() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.surfaces[0].ClearImage()
	sp.surfaces[1].ClearImage()
}

// Swap performs the crossfade: the inactive surface becomes opaque, the
// active one transparent, and active tracking flips to match.
func (sp *SurfacePair) Swap() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.swapLocked()
}

// StageAndSwap stages an image on the hidden surface and crossfades to it
// in one atomic step, so no concurrent snapshot can observe the staged
// image on a transparent surface mid-change.
func (sp *SurfacePair) StageAndSwap(url string, zoom bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.surfaces[1-sp.active].SetImage(url, zoom)
	sp.swapLocked()
}

func (sp *SurfacePair) swapLocked() {
	sp.surfaces[1-sp.active].Opacity = 1
	sp.surfaces[sp.active].Opacity = 0
	sp.active = 1 - sp.active
}

// Reset makes surface A active and opaque again without clearing styling.
func (sp *SurfacePair) Reset() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.active = 0
	sp.surfaces[0].Opacity = 1
	sp.surfaces[1].Opacity = 0
}

// Snapshot returns a consistent copy of both surfaces for frame
// composition.
func (sp *SurfacePair) Snapshot() ([2]Surface, int) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.surfaces, sp.active
}

// Overlay is the tint layer composited above whichever surface is active.
// Written by the orchestrator, read by whichever goroutine composes the
// next frame.
type Overlay struct {
	mu   sync.Mutex
	tint string
}

// SetTint replaces the overlay's CSS rgba() tint.
func (o *Overlay) SetTint(tint string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tint = tint
}

// Tint returns the current CSS rgba() tint.
func (o *Overlay) Tint() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tint
}

// ParseHexColor parses a #RGB or #RRGGBB color string into channels.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
		// as-is
	default:
		return 0, 0, 0, fmt.Errorf("invalid hex color length: %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// OverlayTint renders a hex color and opacity as a CSS rgba() string.
// Malformed color input degrades to opaque black rather than failing the
// whole update.
func OverlayTint(hexColor string, opacity float64) string {
	r, g, b, err := ParseHexColor(hexColor)
	if err != nil {
		r, g, b = 0, 0, 0
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(opacity, 'g', -1, 64))
}

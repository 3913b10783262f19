package background

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSurfacePairStartsWithAOpaque(t *testing.T) {
	sp := NewSurfacePair()

	assert.Equal(t, 0, sp.ActiveIndex())
	assert.Equal(t, float64(1), sp.Active().Opacity)
	assert.Equal(t, float64(0), sp.Inactive().Opacity)
}

func TestSwapFlipsOpacityAndTracking(t *testing.T) {
	sp := NewSurfacePair()
	sp.StageImage("https://img/next", false)

	sp.Swap()

	assert.Equal(t, 1, sp.ActiveIndex())
	assert.Equal(t, "https://img/next", sp.Active().ImageURL)
	assert.Equal(t, float64(1), sp.Active().Opacity)
	assert.Equal(t, float64(0), sp.Inactive().Opacity)

	sp.Swap()
	assert.Equal(t, 0, sp.ActiveIndex())
}

func TestStageAndSwapCrossfadesInOneStep(t *testing.T) {
	sp := NewSurfacePair()
	sp.SetActiveImage("https://img/first", false)

	sp.StageAndSwap("https://img/second", true)

	assert.Equal(t, 1, sp.ActiveIndex())
	assert.Equal(t, "https://img/second", sp.Active().ImageURL)
	assert.True(t, sp.Active().Zoom)
	assert.Equal(t, float64(1), sp.Active().Opacity)
	assert.Equal(t, "https://img/first", sp.Inactive().ImageURL)
	assert.Equal(t, float64(0), sp.Inactive().Opacity)
}

func TestSetActiveZoom(t *testing.T) {
	sp := NewSurfacePair()

	// Nothing up yet, so nothing to toggle.
	assert.False(t, sp.SetActiveZoom(true))

	sp.SetActiveImage("https://img/a", false)
	assert.True(t, sp.SetActiveZoom(true))
	assert.True(t, sp.Active().Zoom)
}

func TestSetColorPaintsBothSurfaces(t *testing.T) {
	sp := NewSurfacePair()
	sp.SetActiveImage("https://img/a", true)

	sp.SetColor("#123456")

	assert.Equal(t, "#123456", sp.Active().Color)
	assert.Equal(t, "#123456", sp.Inactive().Color)
	assert.Empty(t, sp.Active().ImageURL)
}

func TestSetColorClearsImageStyling(t *testing.T) {
	var s Surface
	s.SetImage("https://img/a", true)
	s.SetColor("#112233")

	assert.Equal(t, "#112233", s.Color)
	assert.Empty(t, s.ImageURL)
	assert.False(t, s.Zoom)

	s.SetImage("https://img/b", false)
	assert.Empty(t, s.Color)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		wantErr bool
	}{
		{in: "#336699", r: 0x33, g: 0x66, b: 0x99},
		{in: "336699", r: 0x33, g: 0x66, b: 0x99},
		{in: "#fff", r: 0xff, g: 0xff, b: 0xff},
		{in: " #000000 ", r: 0, g: 0, b: 0},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, [3]uint8{tc.r, tc.g, tc.b}, [3]uint8{r, g, b})
		})
	}
}

func TestOverlayTint(t *testing.T) {
	assert.Equal(t, "rgba(51,102,153,0.35)", OverlayTint("#336699", 0.35))
	assert.Equal(t, "rgba(255,255,255,1)", OverlayTint("#fff", 1))

	// Malformed input degrades to black instead of failing.
	assert.Equal(t, "rgba(0,0,0,0.5)", OverlayTint("not-a-color", 0.5))
}

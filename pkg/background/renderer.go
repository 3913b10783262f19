package background

// Frame is one composited snapshot of the page background: both surfaces,
// which one is active, the overlay tint, and the embedded video state when
// the video strategy is live.
type Frame struct {
	Surfaces    [2]Surface  `json:"surfaces"`
	ActiveIndex int         `json:"activeIndex"`
	Overlay     string      `json:"overlay"`
	Video       *VideoFrame `json:"video,omitempty"`
}

// VideoFrame carries the embedded player state for the video strategy.
type VideoFrame struct {
	EmbedURL string `json:"embedUrl"`
	VideoID  string `json:"videoId"`
	Quality  string `json:"quality"`
}

// PlayerCommand is an imperative instruction for the page's embedded video
// player (load library, load video, set quality, seek).
type PlayerCommand struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Renderer pushes composited state to the page. The local WebSocket bridge
// implements it; tests substitute a recorder.
type Renderer interface {
	// RenderFrame displays a frame. Implementations must apply frames in
	// the order received.
	RenderFrame(f Frame)
	// SendPlayerCommand forwards a command to the embedded video player.
	SendPlayerCommand(cmd PlayerCommand)
}

// BuildFrame composes a frame from the surface pair, overlay and optional
// video state. The surfaces and active index come from one consistent
// snapshot.
func BuildFrame(sp *SurfacePair, ov *Overlay, video *VideoFrame) Frame {
	surfaces, active := sp.Snapshot()
	f := Frame{
		Surfaces:    surfaces,
		ActiveIndex: active,
		Video:       video,
	}
	if ov != nil {
		f.Overlay = ov.Tint()
	}
	return f
}

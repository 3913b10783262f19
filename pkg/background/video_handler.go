package background

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dixieflatline76/Lumen/util"
)

// Player command names understood by the page's embedded player shim.
const (
	CmdLoadPlayerLibrary  = "loadPlayerLibrary"
	CmdLoadVideo          = "loadVideoById"
	CmdSetPlaybackQuality = "setPlaybackQuality"
	CmdSeekTo             = "seekTo"
)

// playerLibraryLoaded tracks whether the page has been told to pull in the
// iframe player library. Loading it is idempotent on the page side but
// wasteful, so the instruction is sent at most once per process.
var playerLibraryLoaded = util.NewSafeBool()

// videoHandler implements the looping muted video strategy.
type videoHandler struct {
	deps Deps
	cfg  Config
}

func newVideoHandler(cfg Config, deps Deps) *videoHandler {
	return &videoHandler{deps: deps, cfg: cfg}
}

func (h *videoHandler) Type() Type {
	return TypeYouTube
}

func (h *videoHandler) Init(ctx context.Context) {
	if playerLibraryLoaded.CompareAndSwap(false, true) {
		h.deps.Renderer.SendPlayerCommand(PlayerCommand{Name: CmdLoadPlayerLibrary})
	}
	h.render()
	h.publish()
}

func (h *videoHandler) Update(ctx context.Context, cfg Config) {
	old := h.cfg
	h.cfg = cfg

	switch {
	case cfg.YouTubeVideoID != old.YouTubeVideoID:
		// An already-running player switches videos without tearing down the
		// iframe; the frame is re-sent as well so a page reload lands on the
		// new video.
		h.deps.Renderer.SendPlayerCommand(PlayerCommand{Name: CmdLoadVideo, Value: cfg.YouTubeVideoID})
		h.render()
		h.publish()
	case cfg.YouTubeQuality != old.YouTubeQuality:
		// The player can usually switch quality in place; the frame is
		// re-sent as well so a page reload lands on the right variant.
		h.deps.Renderer.SendPlayerCommand(PlayerCommand{Name: CmdSetPlaybackQuality, Value: cfg.YouTubeQuality})
		h.render()
		h.publish()
	case cfg.Color != old.Color || cfg.OverlayOpacity != old.OverlayOpacity:
		h.render()
	}
}

// Refresh is a no-op; the video loops on its own.
func (h *videoHandler) Refresh(ctx context.Context) {}

func (h *videoHandler) Destroy() {}

// OnVideoEnded restarts playback from the beginning. The embed URL already
// requests looping, so this only matters when the page's player drops the
// loop parameter.
func (h *videoHandler) OnVideoEnded() {
	h.deps.Renderer.SendPlayerCommand(PlayerCommand{Name: CmdSeekTo, Value: "0"})
}

func (h *videoHandler) render() {
	// The surfaces sit behind the video; both are cleared so nothing stale
	// bleeds through while the player spins up.
	h.deps.Surfaces.ClearImages()
	h.deps.Renderer.RenderFrame(BuildFrame(h.deps.Surfaces, h.deps.Overlay, &VideoFrame{
		EmbedURL: embedURL(h.cfg.YouTubeVideoID, h.cfg.YouTubeQuality),
		VideoID:  h.cfg.YouTubeVideoID,
		Quality:  h.cfg.YouTubeQuality,
	}))
}

func (h *videoHandler) publish() {
	h.deps.Store.PublishCurrentImage(CurrentMeta{
		Type:    TypeYouTube,
		VideoID: h.cfg.YouTubeVideoID,
		Quality: h.cfg.YouTubeQuality,
	})
}

// embedURL builds the iframe URL for an autoplaying, muted, looping
// background video. The playlist parameter repeats the id; that is how the
// iframe API loops a single video.
func embedURL(videoID, quality string) string {
	v := url.Values{}
	v.Set("autoplay", "1")
	v.Set("mute", "1")
	v.Set("controls", "0")
	v.Set("loop", "1")
	v.Set("playlist", videoID)
	if quality != "" {
		v.Set("vq", quality)
	}
	return fmt.Sprintf("https://www.youtube.com/embed/%s?%s", url.PathEscape(videoID), v.Encode())
}

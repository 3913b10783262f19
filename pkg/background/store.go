package background

// CurrentMeta is the "current background" metadata written back to the
// external store after a successful change. Images publish url and source;
// video publishes the id and quality; the color strategy publishes nothing.
type CurrentMeta struct {
	Type    Type   `json:"type"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	VideoID string `json:"videoId,omitempty"`
	Quality string `json:"quality,omitempty"`
}

// Store is the reactive configuration/state store this engine treats as an
// external collaborator. The engine only ever writes current-image
// metadata; configuration flows the other way, as events into the Manager.
type Store interface {
	PublishCurrentImage(meta CurrentMeta)
}

// State is the full snapshot delivered by the "state initialized" event.
// The engine extracts only the background sub-tree.
type State struct {
	Background Config `json:"background"`
}

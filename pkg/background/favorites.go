package background

import "github.com/dixieflatline76/Lumen/pkg/provider"

// FavoritesSource is the external favorites persistence service, consulted
// only for the favorites-only sourcing mode and for random selection.
type FavoritesSource interface {
	// Count returns how many favorites exist right now.
	Count() int
	// Random returns a uniformly random favorite, or false when empty.
	Random() (provider.ImageRecord, bool)
}

// sourceResolution is the two-case result of resolving where the next
// image comes from: either a ready-made record (favorites short-circuit,
// no provider involved) or an instruction to go fetch.
type sourceResolution struct {
	record *provider.ImageRecord // non-nil: use this, skip the provider path
}

func (r sourceResolution) shortCircuit() bool {
	return r.record != nil
}

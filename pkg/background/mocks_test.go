package background

import (
	"context"
	"sync"

	"github.com/dixieflatline76/Lumen/pkg/provider"
)

// stubProvider is a scriptable provider for engine tests.
type stubProvider struct {
	mu        sync.Mutex
	name      string
	available bool
	batch     []provider.ImageRecord
	err       error
	queries   []string
}

func newStubProvider(name string, batch ...provider.ImageRecord) *stubProvider {
	return &stubProvider{name: name, available: true, batch: batch}
}

func (s *stubProvider) Name() string {
	return s.name
}

func (s *stubProvider) CheckRateLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

func (s *stubProvider) GetImageBatch(ctx context.Context, query string, count int) ([]provider.ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]provider.ImageRecord, len(s.batch))
	copy(out, s.batch)
	return out, nil
}

func (s *stubProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *stubProvider) lastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

func (s *stubProvider) setBatch(batch ...provider.ImageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = batch
	s.err = nil
}

func (s *stubProvider) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubProvider) setAvailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = v
}

// recorderRenderer captures every frame and player command pushed.
type recorderRenderer struct {
	mu       sync.Mutex
	frames   []Frame
	commands []PlayerCommand
}

func (r *recorderRenderer) RenderFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorderRenderer) SendPlayerCommand(cmd PlayerCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

func (r *recorderRenderer) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorderRenderer) allFrames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

func (r *recorderRenderer) lastFrame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func (r *recorderRenderer) commandNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.commands))
	for i, c := range r.commands {
		names[i] = c.Name
	}
	return names
}

// recorderStore captures published current-image metadata.
type recorderStore struct {
	mu    sync.Mutex
	metas []CurrentMeta
}

func (s *recorderStore) PublishCurrentImage(meta CurrentMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metas = append(s.metas, meta)
}

func (s *recorderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.metas)
}

func (s *recorderStore) last() CurrentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metas[len(s.metas)-1]
}

// stubFavorites is a fixed favorites listing; Random returns the first
// entry so tests are deterministic.
type stubFavorites struct {
	recs []provider.ImageRecord
}

func (f *stubFavorites) Count() int {
	return len(f.recs)
}

func (f *stubFavorites) Random() (provider.ImageRecord, bool) {
	if len(f.recs) == 0 {
		return provider.ImageRecord{}, false
	}
	return f.recs[0], true
}

func rec(url string) provider.ImageRecord {
	return provider.ImageRecord{URL: url, AuthorName: "author", Source: "test"}
}

func newTestDeps(providers map[string]provider.Provider, fav FavoritesSource) (Deps, *recorderRenderer, *recorderStore) {
	r := &recorderRenderer{}
	st := &recorderStore{}
	return Deps{
		Surfaces:  NewSurfacePair(),
		Overlay:   &Overlay{},
		Renderer:  r,
		Store:     st,
		Providers: providers,
		Favorites: fav,
	}, r, st
}

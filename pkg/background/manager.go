package background

import (
	"context"
	"sync"
	"time"

	"github.com/dixieflatline76/Lumen/pkg/provider"
	"github.com/dixieflatline76/Lumen/util/log"
)

// cycleTimeout bounds a single scheduler-driven background change.
const cycleTimeout = 60 * time.Second

// Manager is the rotation orchestrator. It owns the surface pair, the
// overlay, the active strategy handler and the cycling scheduler, and is
// the only writer of all four. Page events arrive through its Handle*
// methods; everything else is internal.
type Manager struct {
	mu      sync.Mutex
	deps    Deps
	cfg     Config
	handler StrategyHandler
	sched   *Scheduler
	started bool
}

// NewManager wires an orchestrator. Missing render surfaces are fatal
// here: there is nothing meaningful the engine could do without them.
func NewManager(deps Deps) (*Manager, error) {
	if deps.Surfaces == nil {
		return nil, &MissingSurfaceError{What: "surface pair"}
	}
	if deps.Overlay == nil {
		return nil, &MissingSurfaceError{What: "overlay"}
	}

	m := &Manager{deps: deps}
	m.sched = NewScheduler(m.cycle)
	return m, nil
}

// HandleStateInit consumes the page's "state initialized" event: the full
// state snapshot arrives, the background sub-tree is extracted and the
// first handler is constructed and painted.
func (m *Manager) HandleStateInit(ctx context.Context, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	m.applyLocked(ctx, st.Background, true)
}

// HandleConfigChange consumes a background config change from the page.
// Events before state init are ignored; the snapshot will carry them.
func (m *Manager) HandleConfigChange(ctx context.Context, cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		log.Debugf("Config change before state init ignored")
		return
	}
	m.applyLocked(ctx, cfg, false)
}

func (m *Manager) applyLocked(ctx context.Context, cfg Config, initial bool) {
	m.cfg = cfg
	m.deps.Overlay.SetTint(OverlayTint(cfg.Color, cfg.OverlayOpacity))

	if initial || m.handler == nil || m.handler.Type() != cfg.Type {
		if m.handler != nil {
			m.handler.Destroy()
		}
		m.handler = m.buildHandler(cfg)
		m.handler.Init(ctx)
	} else {
		m.handler.Update(ctx, cfg)
	}

	m.recomputeCyclingLocked()
}

// buildHandler constructs the handler for the config, substituting the
// solid-color strategy for configs the engine cannot act on. The page
// keeps its config untouched; only what is displayed degrades.
func (m *Manager) buildHandler(cfg Config) StrategyHandler {
	h, err := newHandler(cfg, m.deps)
	if err == nil {
		return h
	}
	log.Printf("Unusable background config, substituting solid color: %v", err)
	sub := cfg
	sub.Type = TypeColor
	return newColorHandler(sub, m.deps)
}

// RefreshNow advances to the next background on demand.
func (m *Manager) RefreshNow(ctx context.Context) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h.Refresh(ctx)
	}
}

// ApplyRecord displays a specific ready-made record, typically a favorite
// the user promoted. Only the image strategy can honor it.
func (m *Manager) ApplyRecord(ctx context.Context, rec provider.ImageRecord) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()

	if a, ok := h.(recordApplier); ok {
		a.ApplyRecord(ctx, rec)
		return
	}
	log.Debugf("Apply record ignored, active strategy cannot display one")
}

// HandleVideoEnded forwards the page's video-ended signal to the active
// handler when it cares.
func (m *Manager) HandleVideoEnded() {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()

	if v, ok := h.(videoEndedHandler); ok {
		v.OnVideoEnded()
	}
}

// CurrentConfig returns the last applied config snapshot.
func (m *Manager) CurrentConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Cycling reports whether the scheduler is actively rotating backgrounds.
func (m *Manager) Cycling() bool {
	return m.sched.Running()
}

// Close stops cycling and tears down the active handler.
func (m *Manager) Close() {
	m.sched.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handler != nil {
		m.handler.Destroy()
		m.handler = nil
	}
}

// recomputeCyclingLocked restarts or stops the scheduler to match the
// current config. Only the image strategy cycles; a substituted color
// handler therefore never does, even if the page's config says image.
func (m *Manager) recomputeCyclingLocked() {
	cycling := m.handler != nil &&
		m.handler.Type() == TypeImage &&
		m.cfg.CycleEnabled &&
		m.cfg.CycleInterval > 0
	if cycling {
		m.sched.Start(time.Duration(m.cfg.CycleInterval) * time.Millisecond)
	} else {
		m.sched.Stop()
	}
}

func (m *Manager) cycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()
	m.RefreshNow(ctx)
}

// Package surfaces tracks the host's UI windows: at most one live handle
// per kind, created under an immutable per-kind security policy.
package surfaces

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Window is an opened native surface. Implementations live behind the
// Opener so tests can run without any display.
type Window interface {
	Focus() error
	Hide() error
	SetClickThrough(enabled bool) error
	Close() error
	// Done is closed when the surface terminates for any reason.
	Done() <-chan struct{}
}

// Opener creates native windows for surface kinds.
type Opener interface {
	Open(kind Kind, contentURL string, policy SecurityPolicy) (Window, error)
}

// Handle is the tracked record of a live surface.
type Handle struct {
	ID     string
	Kind   Kind
	Policy SecurityPolicy
	window Window
}

// Manager owns the per-kind handle table. Close events clear a handle so
// a later Show recreates the surface; a cleared handle is never reused.
type Manager struct {
	logger     zerolog.Logger
	opener     Opener
	contentURL func(kind Kind) string

	mu      sync.Mutex
	handles map[Kind]*Handle
}

// NewManager creates a manager. contentURL maps a surface kind to the
// loopback URL its window loads.
func NewManager(opener Opener, contentURL func(kind Kind) string, logger zerolog.Logger) *Manager {
	return &Manager{
		logger:     logger,
		opener:     opener,
		contentURL: contentURL,
		handles:    make(map[Kind]*Handle),
	}
}

// Show opens the surface of the given kind, or focuses it if it is already
// live. Idempotent.
func (m *Manager) Show(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown surface kind %q", kind)
	}

	m.mu.Lock()
	if h, ok := m.handles[kind]; ok {
		m.mu.Unlock()
		m.logger.Debug().Str("kind", string(kind)).Str("id", h.ID).Msg("surface already live, focusing")
		return h.window.Focus()
	}
	m.mu.Unlock()

	policy := PolicyFor(kind)
	window, err := m.opener.Open(kind, m.contentURL(kind), policy)
	if err != nil {
		return fmt.Errorf("failed to open %s surface: %w", kind, err)
	}

	h := &Handle{
		ID:     uuid.NewString(),
		Kind:   kind,
		Policy: policy,
		window: window,
	}

	m.mu.Lock()
	if existing, ok := m.handles[kind]; ok {
		// A concurrent Show won; keep the first handle.
		m.mu.Unlock()
		_ = window.Close()
		return existing.window.Focus()
	}
	m.handles[kind] = h
	m.mu.Unlock()

	go m.watchClose(h)

	m.logger.Info().Str("kind", string(kind)).Str("id", h.ID).Msg("surface created")
	return nil
}

// Hide hides the surface if it is live; no-op otherwise.
func (m *Manager) Hide(kind Kind) error {
	m.mu.Lock()
	h, ok := m.handles[kind]
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return h.window.Hide()
}

// SetClickThrough toggles pointer pass-through on the overlay surface.
func (m *Manager) SetClickThrough(enabled bool) error {
	m.mu.Lock()
	h, ok := m.handles[KindOverlay]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("overlay surface is not open")
	}
	return h.window.SetClickThrough(enabled)
}

// Live reports whether a surface of the given kind is currently tracked.
func (m *Manager) Live(kind Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.handles[kind]
	return ok
}

// HandleID returns the tracked handle's ID, or "" if none is live.
func (m *Manager) HandleID(kind Kind) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.handles[kind]; ok {
		return h.ID
	}
	return ""
}

// SurfaceClosed records an out-of-band close signal (e.g. the surface's
// gateway socket dropped) for the given kind.
func (m *Manager) SurfaceClosed(kind Kind) {
	m.mu.Lock()
	h, ok := m.handles[kind]
	if ok {
		delete(m.handles, kind)
	}
	m.mu.Unlock()

	if ok {
		_ = h.window.Close()
		m.logger.Info().Str("kind", string(kind)).Str("id", h.ID).Msg("surface closed")
	}
}

// CloseAll closes every live surface. Used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.handles = make(map[Kind]*Handle)
	m.mu.Unlock()

	for _, h := range handles {
		_ = h.window.Close()
	}
}

// watchClose clears the handle when its window terminates. Identity is
// compared so a stale close never clears a recreated handle.
func (m *Manager) watchClose(h *Handle) {
	<-h.window.Done()

	m.mu.Lock()
	if current, ok := m.handles[h.Kind]; ok && current.ID == h.ID {
		delete(m.handles, h.Kind)
		m.mu.Unlock()
		m.logger.Info().Str("kind", string(h.Kind)).Str("id", h.ID).Msg("surface handle cleared")
		return
	}
	m.mu.Unlock()
}

// Package themesync keeps a client-visible theme setting consistent
// between local application state, the persisted preferences record, and
// the rendering environment. It is the client-side counterpart of the
// preferences API, written as an explicit state machine instead of
// ambient global state.
package themesync

import (
	"context"
	"fmt"
	"sync"

	"github.com/hat-forum/backend/internal/models"
)

// State models the synchronization lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Applier applies a resolved color scheme to the rendering root. A
// "system" scheme is resolved by the applier against the environment.
type Applier interface {
	Apply(scheme string)
}

// LocalStore persists the chosen scheme in the rendering environment's
// local storage so the next startup can render without a round trip.
type LocalStore interface {
	Set(scheme string)
}

// PreferencesAPI is the slice of the preferences HTTP surface the manager
// needs: one read and one write of the full record.
type PreferencesAPI interface {
	FetchPreferences(ctx context.Context) (*models.UserPreferences, error)
	SavePreferences(ctx context.Context, prefs *models.UserPreferences) error
}

// Manager drives the theme through uninitialized -> loading -> ready and
// keeps the persisted record in step with user-driven changes.
type Manager struct {
	mu      sync.Mutex
	state   State
	theme   string
	api     PreferencesAPI
	applier Applier
	local   LocalStore // optional
}

// NewManager creates a Manager in the uninitialized state. local may be
// nil when the environment has no persistent local storage.
func NewManager(api PreferencesAPI, applier Applier, local LocalStore) *Manager {
	return &Manager{
		state:   StateUninitialized,
		theme:   models.SchemeSystem,
		api:     api,
		applier: applier,
		local:   local,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Theme returns the currently applied scheme.
func (m *Manager) Theme() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// Start fetches the persisted preferences and applies the resolved color
// scheme. A fetch failure still reaches the ready state with the default
// scheme, matching a UI that renders regardless of a failed round trip.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return fmt.Errorf("themesync: start from state %s", m.state)
	}
	m.state = StateLoading
	m.mu.Unlock()

	scheme := models.SchemeSystem
	prefs, err := m.api.FetchPreferences(ctx)
	if err == nil && prefs.ColorScheme != "" {
		scheme = prefs.ColorScheme
	}

	m.mu.Lock()
	m.state = StateReady
	m.theme = scheme
	m.mu.Unlock()

	m.applier.Apply(scheme)
	if m.local != nil {
		m.local.Set(scheme)
	}
	return err
}

// SetTheme applies a user-driven theme change immediately, then merges it
// into the persisted record with a read-modify-write round trip. There is
// no optimistic-concurrency guard: a concurrent save from another client
// is silently overwritten (last write wins). The "system" scheme is
// applied locally but never written back.
func (m *Manager) SetTheme(ctx context.Context, scheme string) error {
	switch scheme {
	case models.SchemeLight, models.SchemeDark, models.SchemeSystem:
	default:
		return fmt.Errorf("themesync: unknown scheme %q", scheme)
	}

	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return fmt.Errorf("themesync: set theme from state %s", m.state)
	}
	m.theme = scheme
	m.mu.Unlock()

	m.applier.Apply(scheme)
	if m.local != nil {
		m.local.Set(scheme)
	}

	if scheme == models.SchemeSystem {
		return nil
	}

	prefs, err := m.api.FetchPreferences(ctx)
	if err != nil {
		return fmt.Errorf("themesync: reading preferences: %w", err)
	}
	prefs.ColorScheme = scheme
	if err := m.api.SavePreferences(ctx, prefs); err != nil {
		return fmt.Errorf("themesync: saving preferences: %w", err)
	}
	return nil
}

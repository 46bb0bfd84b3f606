package session

import (
	"context"
	"sync"
)

// Manager is the session context passed to every auth and data call. It owns a
// Store for its lifetime; Close ends that lifetime and every later call fails
// with ErrClosed.
type Manager struct {
	mu     sync.Mutex
	store  Store
	closed bool
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Current returns the stored session, or nil when there is none.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.store == nil {
		return nil, ErrStoreUnavailable
	}
	return m.store.Load(ctx)
}

// Put replaces the stored session with the given raw payload.
func (m *Manager) Put(ctx context.Context, raw []byte) (*Session, error) {
	s, err := New(raw)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.store == nil {
		return nil, ErrStoreUnavailable
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.store == nil {
		return ErrStoreUnavailable
	}
	return m.store.Clear(ctx)
}

// Authenticated reports whether a session is present. Read failures count as
// absent.
func (m *Manager) Authenticated(ctx context.Context) bool {
	s, err := m.Current(ctx)
	return err == nil && s != nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps payloads in process memory, one per storage key. Like
// RedisStore, a zero ttl keeps entries until they are cleared.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

// Scope returns the Store for a single key.
func (m *MemoryStore) Scope(key string) Store {
	return &memoryScope{parent: m, key: key}
}

// Len reports how many live sessions are held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.entries)
}

// sweepLocked drops expired entries, so sessions abandoned without a logout
// do not pile up.
func (m *MemoryStore) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
}

type memoryScope struct {
	parent *MemoryStore
	key    string
}

func (s *memoryScope) Load(ctx context.Context) (*Session, error) {
	s.parent.mu.Lock()
	e, ok := s.parent.entries[s.key]
	if ok && e.expired(s.parent.now()) {
		delete(s.parent.entries, s.key)
		ok = false
	}
	s.parent.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return New(e.raw)
}

func (s *memoryScope) Save(ctx context.Context, sess *Session) error {
	if sess == nil || len(sess.Raw) == 0 {
		return ErrEmptyPayload
	}
	e := memoryEntry{raw: make([]byte, len(sess.Raw))}
	copy(e.raw, sess.Raw)

	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.sweepLocked()
	if s.parent.ttl > 0 {
		e.expires = s.parent.now().Add(s.parent.ttl)
	}
	s.parent.entries[s.key] = e
	return nil
}

func (s *memoryScope) Clear(ctx context.Context) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.entries, s.key)
	return nil
}

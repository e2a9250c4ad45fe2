package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Values are copied through JSON so
// callers never share mutable state with the map.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// Get returns the stored session and extends its lifetime by the TTL.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	m.mu.Lock()
	e, ok := m.entries[id]
	now := m.now()
	switch {
	case ok && now.After(e.expiresAt):
		delete(m.entries, id)
		ok = false
	case ok:
		e.expiresAt = now.Add(m.ttl)
		m.entries[id] = e
	}
	m.mu.Unlock()

	if !ok {
		return &Session{}, nil
	}
	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, s *Session) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

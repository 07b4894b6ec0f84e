package session

import (
	"context"
	"sync"
	"time"
)

type record struct {
	style         string
	entitledUntil time.Time
	proofRef      string
	awaitingProof bool
}

func (r *record) empty() bool {
	return r.style == "" && r.entitledUntil.IsZero() && r.proofRef == "" && !r.awaitingProof
}

type memoryStore struct {
	mu    sync.RWMutex
	users map[int64]*record
}

// NewMemoryStore constructs an in-memory Store. State is lost on restart,
// which is acceptable for the default single-instance deployment.
func NewMemoryStore() Store {
	return &memoryStore{users: make(map[int64]*record)}
}

func (m *memoryStore) get(userID int64) *record {
	r, ok := m.users[userID]
	if !ok {
		r = &record{}
		m.users[userID] = r
	}
	return r
}

func (m *memoryStore) Style(_ context.Context, userID int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.users[userID]
	if !ok || r.style == "" {
		return "", false, nil
	}
	return r.style, true, nil
}

func (m *memoryStore) SetStyle(_ context.Context, userID int64, style string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.get(userID).style = style
	return nil
}

func (m *memoryStore) ClearStyle(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.users[userID]
	if !ok {
		return nil
	}
	r.style = ""
	if r.empty() {
		delete(m.users, userID)
	}
	return nil
}

func (m *memoryStore) GrantEntitlement(_ context.Context, userID int64, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.get(userID).entitledUntil = time.Now().Add(d)
	return nil
}

func (m *memoryStore) IsEntitled(_ context.Context, userID int64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	if r.entitledUntil.IsZero() {
		return false, nil
	}
	if !r.entitledUntil.After(now) {
		// Lazy cleanup of expired grants.
		r.entitledUntil = time.Time{}
		if r.empty() {
			delete(m.users, userID)
		}
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) RecordProof(_ context.Context, userID int64, fileRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.get(userID).proofRef = fileRef
	return nil
}

func (m *memoryStore) PendingProof(_ context.Context, userID int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.users[userID]
	if !ok || r.proofRef == "" {
		return "", false, nil
	}
	return r.proofRef, true, nil
}

func (m *memoryStore) SetAwaitingProof(_ context.Context, userID int64, awaiting bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !awaiting {
		r, ok := m.users[userID]
		if !ok {
			return nil
		}
		r.awaitingProof = false
		if r.empty() {
			delete(m.users, userID)
		}
		return nil
	}
	m.get(userID).awaitingProof = true
	return nil
}

func (m *memoryStore) AwaitingProof(_ context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	return r.awaitingProof, nil
}

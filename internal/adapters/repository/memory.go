package repository

import (
	"context"
	"sync"

	"github.com/okian/ghostrace/internal/domain/model"
)

// MemoryStore keeps the encoded save in memory. Saves still go through the
// codec so a loaded record never aliases the caller's run.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (model.Save, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return model.Save{}, ErrNotFound
	}
	return Decode(m.data)
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s model.Save) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = b
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// SetRaw replaces the stored bytes as-is. Used to seed damaged records.
func (m *MemoryStore) SetRaw(b []byte) {
	m.mu.Lock()
	m.data = append([]byte(nil), b...)
	m.mu.Unlock()
}
